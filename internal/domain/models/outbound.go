package models

// OutboundMessageRequest represents requests to send a WhatsApp message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// PushMessage is a notification addressed to one or more Expo push tokens.
type PushMessage struct {
	To    []string       `json:"to"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Alert is what the notifier fans out when a moto enters an alerting state.
type Alert struct {
	MotoID string
	Status string
	Reason string
}
