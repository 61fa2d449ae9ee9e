package models

import "time"

// AssetClass is the statutory classification of a scheme for capital gains
// purposes. It is decided at the statement boundary and never re-derived here.
type AssetClass string

const (
	AssetEquity AssetClass = "EQUITY"
	AssetDebt   AssetClass = "DEBT"
	AssetHybrid AssetClass = "HYBRID"
	AssetOther  AssetClass = "OTHER"
)

// EquityLike reports whether the class is eligible for the 31-01-2018
// grandfathering step-up.
func (a AssetClass) EquityLike() bool {
	return a == AssetEquity || a == AssetHybrid
}

// TransactionKind is the closed set of transaction classifications. Statement
// parsers map free-text descriptions onto these once; the engine never
// re-interprets text. Anything a parser cannot classify arrives as
// KindUnclassified and is excluded from matching.
type TransactionKind string

const (
	KindPurchase        TransactionKind = "PURCHASE"
	KindPurchaseSIP     TransactionKind = "PURCHASE_SIP"
	KindSwitchIn        TransactionKind = "SWITCH_IN"
	KindSwitchInMerger  TransactionKind = "SWITCH_IN_MERGER"
	KindRedemption      TransactionKind = "REDEMPTION"
	KindSwitchOut       TransactionKind = "SWITCH_OUT"
	KindSwitchOutMerger TransactionKind = "SWITCH_OUT_MERGER"
	KindDividendPayout  TransactionKind = "DIVIDEND_PAYOUT"
	KindDividendReinv   TransactionKind = "DIVIDEND_REINVEST"
	KindStampDutyTax    TransactionKind = "STAMP_DUTY_TAX"
	KindSTTTax          TransactionKind = "STT_TAX"
	KindUnclassified    TransactionKind = "UNCLASSIFIED"
)

// IsAcquisition reports whether the kind opens a new purchase lot.
// A switch-in starts a fresh lot dated at the switch; acquisition-date
// lineage across switches is deliberately not preserved.
func (k TransactionKind) IsAcquisition() bool {
	switch k {
	case KindPurchase, KindPurchaseSIP, KindSwitchIn, KindSwitchInMerger:
		return true
	}
	return false
}

// IsDisposal reports whether the kind consumes open lots FIFO.
func (k TransactionKind) IsDisposal() bool {
	switch k {
	case KindRedemption, KindSwitchOut, KindSwitchOutMerger:
		return true
	}
	return false
}

// Matchable reports whether the kind participates in lot matching at all.
// Dividend and tax entries carry no units to match.
func (k TransactionKind) Matchable() bool {
	return k.IsAcquisition() || k.IsDisposal()
}

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindPurchase, KindPurchaseSIP, KindSwitchIn, KindSwitchInMerger,
		KindRedemption, KindSwitchOut, KindSwitchOutMerger,
		KindDividendPayout, KindDividendReinv,
		KindStampDutyTax, KindSTTTax, KindUnclassified:
		return true
	}
	return false
}

// Transaction is a single classified statement entry: one scheme, one folio,
// one dated movement of units. Units and Amount are signed: positive for
// acquisitions, negative for disposals.
type Transaction struct {
	ID         int64           `json:"id,omitempty"`
	Scheme     string          `json:"scheme"`
	ISIN       string          `json:"isin"`
	Folio      string          `json:"folio"`
	AssetClass AssetClass      `json:"asset_class"`
	Kind       TransactionKind `json:"kind"`
	Date       time.Time       `json:"date"`
	Units      float64         `json:"units"`
	Price      float64         `json:"price"`
	Amount     float64         `json:"amount"`
	HashID     string          `json:"hash_id,omitempty"`
}
