package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRates = Settings{
	TruckFirstTripCents:       45000,
	TruckAdditionalTripCents:  0,
	HelperBaseCents:           10000,
	HelperAdditionalTripCents: 2000,
	SupervisorDailyCents:      15000,
	LunchUnitCents:            1500,
}

func TestCalculateDailyCost(t *testing.T) {
	cases := []struct {
		name        string
		trips       int
		helperCount int
		lunches     int
		want        Breakdown
	}{
		{
			name:        "single trip one helper no lunch",
			trips:       1,
			helperCount: 1,
			lunches:     0,
			want: Breakdown{
				TruckCents:      45000,
				HelpersCents:    10000,
				SupervisorCents: 15000,
				LunchCents:      0,
				TotalCents:      70000,
			},
		},
		{
			name:        "four trips two helpers two lunches",
			trips:       4,
			helperCount: 2,
			lunches:     2,
			want: Breakdown{
				TruckCents:      45000,
				HelpersCents:    28000,
				SupervisorCents: 15000,
				LunchCents:      3000,
				TotalCents:      91000,
			},
		},
		{
			name:        "two trips hold the helper base",
			trips:       2,
			helperCount: 3,
			lunches:     0,
			want: Breakdown{
				TruckCents:      45000,
				HelpersCents:    30000,
				SupervisorCents: 15000,
				LunchCents:      0,
				TotalCents:      90000,
			},
		},
		{
			name:        "no helpers",
			trips:       1,
			helperCount: 0,
			lunches:     1,
			want: Breakdown{
				TruckCents:      45000,
				HelpersCents:    0,
				SupervisorCents: 15000,
				LunchCents:      1500,
				TotalCents:      61500,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateDailyCost(testRates, tc.trips, tc.helperCount, tc.lunches)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculateDailyCostAdditionalTruckRate(t *testing.T) {
	rates := testRates
	rates.TruckAdditionalTripCents = 15000

	got, err := CalculateDailyCost(rates, 3, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), got.TruckCents)
}

func TestCalculateDailyCostRejectsZeroTrips(t *testing.T) {
	_, err := CalculateDailyCost(testRates, 0, 1, 0)
	require.Error(t, err)
}

func TestSplitHelperShareConservesTotal(t *testing.T) {
	cases := []struct {
		cents int64
		count int
	}{
		{10000, 3},
		{28000, 2},
		{100, 7},
		{1, 3},
	}

	for _, tc := range cases {
		shares, err := SplitHelperShare(tc.cents, tc.count)
		require.NoError(t, err)
		require.Len(t, shares, tc.count)

		var sum int64
		for _, share := range shares {
			sum += share
		}
		assert.Equal(t, tc.cents, sum, "shares of %d among %d must sum back", tc.cents, tc.count)
	}
}

func TestSplitHelperShareRejectsEmptyRoster(t *testing.T) {
	_, err := SplitHelperShare(10000, 0)
	require.Error(t, err)
}
