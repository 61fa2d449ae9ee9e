package gains

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/models"
)

func TestSameSchemeDifferentFoliosAreIndependent(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	buyA := equityTx(models.KindPurchase, date(2020, time.January, 1), 100, 50)
	buyB := buyA
	buyB.Folio = "999/1"

	_, err := p.ProcessTransaction(buyA)
	require.NoError(t, err)
	_, err = p.ProcessTransaction(buyB)
	require.NoError(t, err)

	// Selling 150 out of one folio must fail even though the scheme holds
	// 200 units across both.
	sell := equityTx(models.KindRedemption, date(2022, time.January, 1), 150, 60)
	_, err = p.ProcessTransaction(sell)

	var mismatch *FIFOMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.InDelta(t, 100.0, mismatch.Available, 1e-9)
}

func TestSwitchOutBehavesLikeRedemption(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	buy := equityTx(models.KindPurchase, date(2020, time.January, 1), 100, 50)
	_, err := p.ProcessTransaction(buy)
	require.NoError(t, err)

	out := equityTx(models.KindSwitchOut, date(2022, time.January, 1), 100, 70)
	results, err := p.ProcessTransaction(out)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainLTCG, results[0].GainType)
	assert.InDelta(t, 2000.0, results[0].Gain, 1e-6)
}

func TestSwitchInStartsFreshLot(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	in := equityTx(models.KindSwitchIn, date(2022, time.January, 1), 100, 70)
	_, err := p.ProcessTransaction(in)
	require.NoError(t, err)

	// Sold six months after the switch-in: short term regardless of how
	// long the money sat in the source scheme.
	sell := equityTx(models.KindRedemption, date(2022, time.July, 1), 100, 80)
	results, err := p.ProcessTransaction(sell)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.GainSTCG, results[0].GainType)
	assert.Equal(t, date(2022, time.January, 1), results[0].PurchaseDate)
}

func TestSignedUnitsAreNormalized(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	buy := equityTx(models.KindPurchase, date(2020, time.January, 1), 100, 50)
	_, err := p.ProcessTransaction(buy)
	require.NoError(t, err)

	sell := equityTx(models.KindRedemption, date(2022, time.January, 1), 40, 60)
	require.Negative(t, sell.Units)
	results, err := p.ProcessTransaction(sell)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 40.0, results[0].Units, 1e-9)

	holdings := p.Holdings()
	require.Len(t, holdings, 1)
	assert.InDelta(t, 60.0, holdings[0].Units, 1e-9)
}

func TestNonMatchableKindsReturnNothing(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	div := equityTx(models.KindDividendPayout, date(2020, time.January, 1), 0, 0)
	div.Amount = 1200
	results, err := p.ProcessTransaction(div)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, p.Holdings())
}

func TestHoldingsSortedAndExcludeDrained(t *testing.T) {
	p := NewPortfolioFIFOTracker(fmv.NewStaticProvider())

	second := equityTx(models.KindPurchase, date(2020, time.January, 1), 100, 50)
	second.Folio = "222/1"
	second.Scheme = "Axis Bluechip"
	second.ISIN = "INF846K01EW2"

	first := equityTx(models.KindPurchase, date(2020, time.January, 1), 100, 50)
	first.Folio = "111/1"

	drained := equityTx(models.KindPurchase, date(2020, time.January, 1), 50, 30)
	drained.Folio = "333/1"
	drained.ISIN = "INF109K01BL4"
	drained.Scheme = "ICICI Corp Bond"
	drainSell := drained
	drainSell.Kind = models.KindRedemption
	drainSell.Date = date(2021, time.January, 1)
	drainSell.Units = -50
	drainSell.Price = 35
	drainSell.Amount = -1750

	for _, tx := range []models.Transaction{second, first, drained, drainSell} {
		_, err := p.ProcessTransaction(tx)
		require.NoError(t, err)
	}

	holdings := p.Holdings()
	require.Len(t, holdings, 2)
	assert.Equal(t, "111/1", holdings[0].Folio)
	assert.Equal(t, "222/1", holdings[1].Folio)
}
