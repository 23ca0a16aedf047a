package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{"": StatusActive, "ACTIVE": StatusActive, " inactive ": StatusInactive} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStatus("archived")
	assert.Error(t, err)
}

func TestOutgoingLineValidate(t *testing.T) {
	d := decimal.RequireFromString
	cases := []struct {
		name      string
		requested string
		issued    string
		ok        bool
	}{
		{"issued equals requested", "10", "10", true},
		{"nothing issued", "10", "0", true},
		{"issued exceeds requested", "10", "10.5", false},
		{"zero requested", "0", "0", false},
		{"negative issued", "5", "-1", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := OutgoingLine{LineRef: LineRef{ItemID: 1}, QtyRequested: d(tc.requested), QtyIssued: d(tc.issued)}
			if tc.ok {
				assert.NoError(t, l.Validate())
			} else {
				assert.Error(t, l.Validate())
			}
		})
	}
}

func TestIncomingLineRequiresPositiveQuantity(t *testing.T) {
	l := IncomingLine{LineRef: LineRef{ItemID: 3}, QtyReceived: decimal.Zero}
	assert.Error(t, l.Validate())
	l.QtyReceived = decimal.RequireFromString("0.25")
	assert.NoError(t, l.Validate())
	assert.Error(t, (&IncomingLine{QtyReceived: decimal.NewFromInt(1)}).Validate())
}

func TestIssueValidateClearsOtherRecipient(t *testing.T) {
	center, division := uint(4), uint(9)
	is := CarePackageIssue{
		TemplateID:     1,
		PackagesIssued: decimal.NewFromInt(2),
		RecipientType:  RecipientCenter,
		CenterID:       &center,
		DivisionID:     &division,
		OfficerName:    " K. Perera ",
		OfficerNIC:     "901234567V",
	}
	require.NoError(t, is.Validate())
	assert.Nil(t, is.DivisionID)
	assert.Equal(t, "K. Perera", is.OfficerName)

	is.RecipientType = RecipientDivision
	assert.Error(t, is.Validate(), "division recipient without division id")

	is.RecipientType = "Household"
	assert.Error(t, is.Validate())
}

func TestMasterValidate(t *testing.T) {
	it := Item{Name: "  Rice ", Unit: "kg", Status: StatusActive}
	it.Normalize()
	assert.Equal(t, "Rice", it.Name)
	assert.NoError(t, it.Validate())

	it.ReorderLevel = decimal.NewFromInt(-1)
	assert.Error(t, it.Validate())

	zero := uint(0)
	c := Center{Name: "Galle Hall", DivisionID: &zero, Status: StatusActive}
	c.Normalize()
	assert.Nil(t, c.DivisionID)
	assert.NoError(t, c.Validate())

	assert.Error(t, (&Division{Status: StatusActive}).Validate())
}
