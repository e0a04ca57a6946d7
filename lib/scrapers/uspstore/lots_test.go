package uspstore

import (
	"testing"
	"time"

	"refdocs-backend/lib/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParseLots(t *testing.T) {
	raw := "R123A0^Y^Y^2027-03-01^India^synthetic^F1D234|R098B1^N^Y^2025-01-15^China||^Y^Y^2030-01-01^France"

	lots := ParseLots(raw)
	expected := []catalog.LotRecord{
		{
			Number:         "R123A0",
			Current:        true,
			CertValid:      true,
			ValidUse:       time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			Country:        "India",
			MaterialOrigin: "synthetic",
			AuxCodes:       []string{"F1D234"},
		},
		{
			Number:    "R098B1",
			CertValid: true,
			ValidUse:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Country:   "China",
		},
	}
	if diff := cmp.Diff(expected, lots); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseLotsEmptyField(t *testing.T) {
	require.Empty(t, ParseLots(""))
	require.Empty(t, ParseLots("^Y^Y"))
}

func TestParseLotsShortRecords(t *testing.T) {
	// trailing fields may be absent at any position
	testCases := []struct {
		raw      string
		expected catalog.LotRecord
	}{
		{"R098B1", catalog.LotRecord{Number: "R098B1"}},
		{"R098B1^Y", catalog.LotRecord{Number: "R098B1", Current: true}},
		{"R098B1^N^Y", catalog.LotRecord{Number: "R098B1", CertValid: true}},
		{"R098B1^N^Y^2025-01-15^China", catalog.LotRecord{
			Number:    "R098B1",
			CertValid: true,
			ValidUse:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Country:   "China",
		}},
	}

	for _, test := range testCases {
		lots := ParseLots(test.raw)
		require.Len(t, lots, 1, test.raw)
		require.Equal(t, test.expected, lots[0], test.raw)
	}
}

func TestSelectLotsPriority(t *testing.T) {
	lots := []catalog.LotRecord{
		{Number: "A", Current: false, CertValid: true},
		{Number: "B", Current: true, CertValid: true},
		{Number: "C", Current: true, CertValid: false},
	}

	ordered := SelectLots(lots)
	var numbers []string
	for _, lot := range ordered {
		numbers = append(numbers, lot.Number)
	}
	require.Equal(t, []string{"B", "C", "A"}, numbers)
}

func TestSelectLotsDateTiebreakAndDedupe(t *testing.T) {
	lots := []catalog.LotRecord{
		{Number: "X", ValidUse: time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "Y", ValidUse: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Number: "X", Current: true},
	}

	ordered := SelectLots(lots)
	var numbers []string
	for _, lot := range ordered {
		numbers = append(numbers, lot.Number)
	}
	// the current occurrence of X wins and the stale duplicate is dropped
	require.Equal(t, []string{"X", "Y"}, numbers)
	require.True(t, ordered[0].Current)
}

func TestActiveCountry(t *testing.T) {
	lots := []catalog.LotRecord{
		{Number: "A", Country: "China"},
		{Number: "B", Current: true, Country: "India"},
	}
	require.Equal(t, "India", ActiveCountry(lots))

	require.Equal(t, "China", ActiveCountry(lots[:1]))
	require.Equal(t, "", ActiveCountry(nil))
}
