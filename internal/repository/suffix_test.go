package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"order-support-mcp/internal/model"
)

func TestParseSuffix(t *testing.T) {
	cases := []struct {
		id   string
		want Pattern
	}{
		{"ORD-2001-D", Pattern{Status: model.StatusDelivered}},
		{"ORD-2002-C", Pattern{Status: model.StatusCancelled}},
		{"ORD-2003-S", Pattern{Status: model.StatusShipped}},
		{"ORD-2004-P", Pattern{Status: model.StatusProcessing}},
		{"ORD-2005-F", Pattern{Status: model.StatusFailed, ForceFailure: true}},
		{"ORD-2006-R", Pattern{Status: model.StatusReadyForPickup}},
		{"ORD-2007-T", Pattern{Status: model.StatusInTransit}},
		{"ord-2008-d", Pattern{Status: model.StatusDelivered}},
		{"ORD-2009-E", Pattern{NotFound: true}},
		{"ORD-9999", Pattern{Status: model.StatusPending}},
		{"ORD-1004-B", Pattern{Status: model.StatusPending}},
		{"INVALID-ID", Pattern{NotFound: true}},
		{"ORD-ERROR", Pattern{NotFound: true}},
		{"", Pattern{NotFound: true}},
		{"   ", Pattern{NotFound: true}},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSuffix(tc.id))
		})
	}
}

func TestDigitSeed(t *testing.T) {
	assert.Equal(t, uint64(2001), DigitSeed("ORD-2001-D"))
	assert.Equal(t, uint64(2001), DigitSeed("ORD-2001-S"))
	assert.Equal(t, uint64(12), DigitSeed("A1-B2"))

	// sin dígitos: hash estable
	assert.Equal(t, DigitSeed("ORD-ABC"), DigitSeed("ORD-ABC"))
	assert.NotEqual(t, DigitSeed("ORD-ABC"), DigitSeed("ORD-ABD"))
}

func TestCarrierIndex(t *testing.T) {
	// 'A' = 65, 'B' = 66 -> 131 % 4 = 3
	assert.Equal(t, 3, carrierIndex("AB", 4))
	assert.Equal(t, carrierIndex("ORD-4003-D", 4), carrierIndex("ORD-4003-D", 4))
}
