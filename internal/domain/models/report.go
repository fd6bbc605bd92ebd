package models

import "time"

// DailyReport is the fleet snapshot stored in MongoDB and exported to the spreadsheet.
type DailyReport struct {
	Date           time.Time      `bson:"date" json:"date"`
	MotosTotal     int            `bson:"motos_total" json:"motos_total"`
	StocksTotal    int            `bson:"stocks_total" json:"stocks_total"`
	StatusCounts   map[string]int `bson:"status_counts" json:"status_counts"`
	LowBattery     int            `bson:"low_battery" json:"low_battery"`
	EventCounts    map[string]int `bson:"event_counts" json:"event_counts"`
	EventsInPeriod int            `bson:"events_in_period" json:"events_in_period"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
}
