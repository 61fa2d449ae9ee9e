package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionKindPredicates(t *testing.T) {
	acquisitions := []TransactionKind{KindPurchase, KindPurchaseSIP, KindSwitchIn, KindSwitchInMerger}
	disposals := []TransactionKind{KindRedemption, KindSwitchOut, KindSwitchOutMerger}
	passive := []TransactionKind{KindDividendPayout, KindDividendReinv, KindStampDutyTax, KindSTTTax, KindUnclassified}

	for _, k := range acquisitions {
		assert.True(t, k.IsAcquisition(), "%s", k)
		assert.False(t, k.IsDisposal(), "%s", k)
		assert.True(t, k.Matchable(), "%s", k)
	}
	for _, k := range disposals {
		assert.True(t, k.IsDisposal(), "%s", k)
		assert.False(t, k.IsAcquisition(), "%s", k)
		assert.True(t, k.Matchable(), "%s", k)
	}
	for _, k := range passive {
		assert.False(t, k.Matchable(), "%s", k)
		assert.True(t, k.Valid(), "%s", k)
	}

	assert.False(t, TransactionKind("BONUS").Valid())
}

func TestAssetClassEquityLike(t *testing.T) {
	assert.True(t, AssetEquity.EquityLike())
	assert.True(t, AssetHybrid.EquityLike())
	assert.False(t, AssetDebt.EquityLike())
	assert.False(t, AssetOther.EquityLike())
}

func TestReportedValuesTotals(t *testing.T) {
	rv := ReportedValues{
		EquityLTCG: 100, EquitySTCG: 10,
		DebtLTCG: 200, DebtSTCG: 20,
		HybridLTCG: 300, HybridSTCG: 30,
	}
	assert.InDelta(t, 600.0, rv.TotalLTCG(), 1e-9)
	assert.InDelta(t, 60.0, rv.TotalSTCG(), 1e-9)
}
