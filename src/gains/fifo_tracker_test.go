package gains

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newEquityTracker(t *testing.T) *FIFOUnitTracker {
	t.Helper()
	return NewFIFOUnitTracker("HDFC Top 100", "INF179K01608", "12345/67", models.AssetEquity, fmv.NewStaticProvider())
}

func TestProcessDisposalConsumesOldestLotFirst(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2020, time.January, 1), 100, 50, 5000)
	tr.AddPurchase(date(2021, time.January, 1), 100, 60, 6000)

	results, err := tr.ProcessDisposal(date(2022, time.June, 1), 80, 70, 5600)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, date(2020, time.January, 1), results[0].PurchaseDate)
	assert.InDelta(t, 80.0, results[0].Units, 1e-9)
	assert.InDelta(t, 50.0, results[0].PurchasePrice, 1e-9)

	lots := tr.Lots()
	require.Len(t, lots, 2)
	assert.InDelta(t, 20.0, lots[0].RemainingUnits, 1e-9)
	assert.InDelta(t, 100.0, lots[1].RemainingUnits, 1e-9)
}

func TestProcessDisposalSplitsAcrossLots(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2020, time.January, 1), 100, 50, 5000)
	tr.AddPurchase(date(2021, time.January, 1), 100, 60, 6000)

	results, err := tr.ProcessDisposal(date(2021, time.June, 1), 150, 70, 10500)
	require.NoError(t, err)
	require.Len(t, results, 2)

	first, second := results[0], results[1]
	assert.InDelta(t, 100.0, first.Units, 1e-9)
	assert.Equal(t, models.GainLTCG, first.GainType)
	assert.InDelta(t, 2000.0, first.Gain, 1e-6)

	assert.InDelta(t, 50.0, second.Units, 1e-9)
	assert.Equal(t, models.GainSTCG, second.GainType)
	assert.InDelta(t, 500.0, second.Gain, 1e-6)

	assert.InDelta(t, 50.0, tr.OpenUnits(), 1e-9)
}

func TestUnitConservationAcrossDisposals(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2019, time.March, 5), 120.5, 40, 4820)
	tr.AddPurchase(date(2019, time.September, 5), 79.5, 45, 3577.5)

	var consumed float64
	for _, units := range []float64{30, 70.5, 25} {
		results, err := tr.ProcessDisposal(date(2021, time.January, 10), units, 55, units*55)
		require.NoError(t, err)
		for _, g := range results {
			consumed += g.Units
		}
	}

	assert.InDelta(t, 125.5, consumed, 1e-9)
	assert.InDelta(t, 200.0-125.5, tr.OpenUnits(), 1e-9)
}

func TestDrainedLotsRemainInLedger(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2020, time.January, 1), 100, 50, 5000)

	_, err := tr.ProcessDisposal(date(2022, time.January, 1), 100, 60, 6000)
	require.NoError(t, err)

	lots := tr.Lots()
	require.Len(t, lots, 1)
	assert.InDelta(t, 0.0, lots[0].RemainingUnits, 1e-9)
	assert.InDelta(t, 100.0, lots[0].OriginalUnits, 1e-9)
}

func TestEquityHoldingPeriodBoundary(t *testing.T) {
	tr := newEquityTracker(t)
	purchase := date(2021, time.January, 1)
	tr.AddPurchase(purchase, 200, 50, 10000)

	// Exactly 365 days held is still short term.
	results, err := tr.ProcessDisposal(purchase.AddDate(0, 0, 365), 100, 60, 6000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainSTCG, results[0].GainType)
	assert.False(t, results[0].IsLongTerm)

	results, err = tr.ProcessDisposal(purchase.AddDate(0, 0, 366), 100, 60, 6000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainLTCG, results[0].GainType)
	assert.True(t, results[0].IsLongTerm)
}

func TestDebtLTCGRequiresSaleBeforeSunset(t *testing.T) {
	provider := fmv.NewStaticProvider()
	tr := NewFIFOUnitTracker("ICICI Corp Bond", "INF109K01BL4", "99887/11", models.AssetDebt, provider)
	tr.AddPurchase(date(2019, time.June, 1), 1000, 20, 20000)

	// Held well past 1095 days but sold after 2023-04-01: short term.
	results, err := tr.ProcessDisposal(date(2023, time.April, 2), 400, 25, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainSTCG, results[0].GainType)

	tr2 := NewFIFOUnitTracker("ICICI Corp Bond", "INF109K01BL4", "99887/11", models.AssetDebt, provider)
	tr2.AddPurchase(date(2019, time.June, 1), 1000, 20, 20000)

	results, err = tr2.ProcessDisposal(date(2023, time.March, 31), 400, 25, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainLTCG, results[0].GainType)
}

func TestDebtShortHoldingIsAlwaysSTCG(t *testing.T) {
	tr := NewFIFOUnitTracker("ICICI Corp Bond", "INF109K01BL4", "99887/11", models.AssetDebt, fmv.NewStaticProvider())
	tr.AddPurchase(date(2021, time.January, 1), 500, 20, 10000)

	results, err := tr.ProcessDisposal(date(2022, time.June, 1), 500, 22, 11000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainSTCG, results[0].GainType)
}

func TestGrandfatheringStepsUpCostBasis(t *testing.T) {
	provider := fmv.NewStaticProvider()
	provider.Set("INF179K01608", GrandfatheringCutoff, 80)

	tr := NewFIFOUnitTracker("HDFC Top 100", "INF179K01608", "12345/67", models.AssetEquity, provider)
	tr.AddPurchase(date(2016, time.May, 1), 100, 50, 5000)

	// FMV 80 below sale price 100: stepped-up cost is the FMV.
	results, err := tr.ProcessDisposal(date(2020, time.June, 1), 100, 100, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.True(t, g.Grandfathered)
	assert.False(t, g.GrandfatheringSkipped)
	assert.InDelta(t, 80.0, g.FMVAtCutoff, 1e-9)
	assert.InDelta(t, 8000.0, g.CostBasis, 1e-6)
	assert.InDelta(t, 2000.0, g.Gain, 1e-6)
}

func TestGrandfatheringCappedBySalePrice(t *testing.T) {
	provider := fmv.NewStaticProvider()
	provider.Set("INF179K01608", GrandfatheringCutoff, 80)

	tr := NewFIFOUnitTracker("HDFC Top 100", "INF179K01608", "12345/67", models.AssetEquity, provider)
	tr.AddPurchase(date(2016, time.May, 1), 100, 50, 5000)

	// Sale price 70 below the FMV: the step-up is capped at the sale price.
	results, err := tr.ProcessDisposal(date(2020, time.June, 1), 100, 70, 7000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.True(t, g.Grandfathered)
	assert.InDelta(t, 7000.0, g.CostBasis, 1e-6)
	assert.InDelta(t, 0.0, g.Gain, 1e-6)
}

func TestGrandfatheringNeverLowersCostBasis(t *testing.T) {
	provider := fmv.NewStaticProvider()
	provider.Set("INF179K01608", GrandfatheringCutoff, 30)

	tr := NewFIFOUnitTracker("HDFC Top 100", "INF179K01608", "12345/67", models.AssetEquity, provider)
	tr.AddPurchase(date(2016, time.May, 1), 100, 50, 5000)

	// FMV below actual cost: actual cost wins.
	results, err := tr.ProcessDisposal(date(2020, time.June, 1), 100, 100, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.True(t, g.Grandfathered)
	assert.InDelta(t, 5000.0, g.CostBasis, 1e-6)
	assert.InDelta(t, 5000.0, g.Gain, 1e-6)
}

func TestGrandfatheringSkippedWithoutFMV(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2016, time.May, 1), 100, 50, 5000)

	results, err := tr.ProcessDisposal(date(2020, time.June, 1), 100, 100, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.False(t, g.Grandfathered)
	assert.True(t, g.GrandfatheringSkipped)
	assert.InDelta(t, 5000.0, g.CostBasis, 1e-6)
}

func TestGrandfatheringIgnoredForPostCutoffLots(t *testing.T) {
	provider := fmv.NewStaticProvider()
	provider.Set("INF179K01608", GrandfatheringCutoff, 80)

	tr := NewFIFOUnitTracker("HDFC Top 100", "INF179K01608", "12345/67", models.AssetEquity, provider)
	tr.AddPurchase(date(2019, time.February, 1), 100, 50, 5000)

	results, err := tr.ProcessDisposal(date(2021, time.June, 1), 100, 100, 10000)
	require.NoError(t, err)
	require.Len(t, results, 1)

	g := results[0]
	assert.False(t, g.Grandfathered)
	assert.False(t, g.GrandfatheringSkipped)
	assert.InDelta(t, 5000.0, g.CostBasis, 1e-6)
}

func TestDisposalExceedingOpenUnitsIsRejectedWhole(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2020, time.January, 1), 100, 50, 5000)

	results, err := tr.ProcessDisposal(date(2021, time.January, 1), 150, 60, 9000)
	require.Error(t, err)
	assert.Nil(t, results)

	var mismatch *FIFOMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.InDelta(t, 150.0, mismatch.Requested, 1e-9)
	assert.InDelta(t, 100.0, mismatch.Available, 1e-9)
	assert.Equal(t, "HDFC Top 100", mismatch.Scheme)

	// No lot was touched by the rejected disposal.
	assert.InDelta(t, 100.0, tr.OpenUnits(), 1e-9)
}

func TestDisposalWithinEpsilonOfOpenUnitsSucceeds(t *testing.T) {
	tr := newEquityTracker(t)
	tr.AddPurchase(date(2020, time.January, 1), 100.0000004, 50, 5000)

	results, err := tr.ProcessDisposal(date(2022, time.January, 1), 100.0000005, 60, 6000)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.0, tr.OpenUnits(), unitEpsilon)
}
