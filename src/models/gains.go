package models

import "time"

// GainType tags a realized gain as short- or long-term.
const (
	GainSTCG = "STCG"
	GainLTCG = "LTCG"
)

// PurchaseLot is a single acquisition of units. Lots are consumed FIFO on
// disposal; a fully consumed lot stays in the ledger with RemainingUnits zero
// so the acquisition lineage survives for audit.
type PurchaseLot struct {
	Date           time.Time `json:"date"`
	OriginalUnits  float64   `json:"original_units"`
	RemainingUnits float64   `json:"remaining_units"`
	Price          float64   `json:"price"`
	Amount         float64   `json:"amount"`
}

// GainResult is one (purchase lot, disposal) match. A disposal spanning
// several lots yields one GainResult per lot it consumes.
type GainResult struct {
	Scheme     string     `json:"scheme"`
	ISIN       string     `json:"isin"`
	Folio      string     `json:"folio"`
	AssetClass AssetClass `json:"asset_class"`

	SaleDate     time.Time `json:"sale_date"`
	PurchaseDate time.Time `json:"purchase_date"`
	Units        float64   `json:"units"`

	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	SaleValue     float64 `json:"sale_value"`
	CostBasis     float64 `json:"cost_basis"`
	Gain          float64 `json:"gain"`

	IsLongTerm bool   `json:"is_long_term"`
	GainType   string `json:"gain_type"`

	// Grandfathered is set when the 31-01-2018 FMV step-up was applied.
	// GrandfatheringSkipped is set when the lot qualified but no FMV was
	// available; the gain then uses actual cost and must be reported as
	// understating the benefit, never silently accepted.
	Grandfathered         bool    `json:"grandfathered"`
	GrandfatheringSkipped bool    `json:"grandfathering_skipped,omitempty"`
	FMVAtCutoff           float64 `json:"fmv_at_cutoff,omitempty"`
}

// SchemeHolding is the open-lot view of one scheme within a folio: what is
// still held after all disposals have been matched.
type SchemeHolding struct {
	Scheme     string        `json:"scheme"`
	ISIN       string        `json:"isin"`
	Folio      string        `json:"folio"`
	AssetClass AssetClass    `json:"asset_class"`
	Units      float64       `json:"units"`
	CostValue  float64       `json:"cost_value"`
	Lots       []PurchaseLot `json:"lots"`
}
