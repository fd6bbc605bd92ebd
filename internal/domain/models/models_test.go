package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCategory(t *testing.T) {
	cases := map[string]MotoCategory{
		"Mottu Sport": CategorySport,
		"  SPORT ":    CategorySport,
		"e":           CategoryE,
		"Elétrica":    CategoryE,
		"eletrica":    CategoryE,
		"Mottu E":     CategoryE,
		"pop":         CategoryPop,
		"":            CategoryPop,
		"scooter":     CategoryPop,
	}
	for raw, want := range cases {
		assert.Equal(t, want, CanonicalCategory(raw), raw)
	}
}

func TestMotoHydrate(t *testing.T) {
	m := Moto{ID: "1", Title: "Entrega 12", SubTitle: "sport", Plate: "ABC1D23"}.Hydrate()

	assert.Equal(t, string(CategorySport), m.SubTitle)
	assert.Equal(t, "mottu-sport.png", m.Image)
}

func TestMotoInputNormalize(t *testing.T) {
	in := MotoInput{Title: "  Entrega ", SubTitle: "eletr", Plate: " ABC1234 ", StockID: StringPtr("  ")}.Normalize()

	assert.Equal(t, "Entrega", in.Title)
	assert.Equal(t, string(CategoryE), in.SubTitle)
	assert.Equal(t, "ABC1234", in.Plate)
	assert.Nil(t, in.StockID)

	empty := MotoInput{SubTitle: "   "}.Normalize()
	assert.Empty(t, empty.SubTitle)
}

func TestMotoChangesApply(t *testing.T) {
	base := Moto{ID: "m1", Title: "Old", SubTitle: string(CategoryPop), Plate: "AAA0000", StockID: StringPtr("s1")}

	updated := MotoChanges{Title: StringPtr(" New "), SubTitle: StringPtr("sport")}.Apply(base)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, string(CategorySport), updated.SubTitle)
	assert.Equal(t, "AAA0000", updated.Plate)
	assert.Equal(t, "s1", *updated.StockID)

	cleared := MotoChanges{ClearStock: true}.Apply(base)
	assert.Nil(t, cleared.StockID)
}

func TestMotoChangesValidationView(t *testing.T) {
	view := MotoChanges{Plate: StringPtr("AB1")}.ValidationView()

	assert.Equal(t, "OK", view.Title)
	assert.Equal(t, string(CategoryPop), view.SubTitle)
	assert.Equal(t, "AB1", view.Plate)
	assert.True(t, MotoChanges{}.Empty())
	assert.False(t, MotoChanges{ClearStock: true}.Empty())
}

func TestStockInputApply(t *testing.T) {
	s := StockInput{Name: " Pátio Norte ", Quantity: IntPtr(12), Location: " SP "}.Apply(Stock{ID: "s1", Quantity: 3})

	assert.Equal(t, Stock{ID: "s1", Name: "Pátio Norte", Quantity: 12, Location: "SP"}, s)
}

func TestParseOperatorCommand(t *testing.T) {
	cmd := ParseOperatorCommand("/alert moto1 pneu furado na saída")
	assert.Equal(t, OperatorAlert, cmd.Type)
	assert.Equal(t, "MOTO1", cmd.MotoID)
	assert.Equal(t, []string{"pneu", "furado", "na", "saída"}, cmd.Args)
	assert.True(t, cmd.NeedsMoto())

	report := ParseOperatorCommand("REPORT")
	assert.Equal(t, OperatorReport, report.Type)
	assert.False(t, report.NeedsMoto())

	assert.Equal(t, OperatorUnknown, ParseOperatorCommand("").Type)
	assert.Equal(t, OperatorUnknown, ParseOperatorCommand("/reboot MOTO1").Type)
}
