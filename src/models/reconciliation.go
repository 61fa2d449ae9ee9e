package models

// ReconciliationStatus is the outcome of comparing FIFO-computed totals for a
// financial year against the totals the registrar reported. Mismatch statuses
// are expected, reportable outcomes, not errors.
type ReconciliationStatus string

const (
	StatusNotReconciled ReconciliationStatus = "NOT_RECONCILED"
	StatusMatched       ReconciliationStatus = "MATCHED"
	StatusMinorDiff     ReconciliationStatus = "MINOR_DIFF"
	StatusMajorDiff     ReconciliationStatus = "MAJOR_DIFF"
	StatusRTAOnly       ReconciliationStatus = "RTA_ONLY"
	StatusFIFOOnly      ReconciliationStatus = "FIFO_ONLY"
)

// ReportedValues are per-asset-class LTCG/STCG totals from a registrar-issued
// capital gains statement, the authoritative side of the reconciliation.
type ReportedValues struct {
	EquityLTCG float64 `json:"equity_ltcg"`
	EquitySTCG float64 `json:"equity_stcg"`
	DebtLTCG   float64 `json:"debt_ltcg"`
	DebtSTCG   float64 `json:"debt_stcg"`
	HybridLTCG float64 `json:"hybrid_ltcg"`
	HybridSTCG float64 `json:"hybrid_stcg"`
}

// TotalLTCG sums reported long-term gains across asset classes.
func (r ReportedValues) TotalLTCG() float64 {
	return r.EquityLTCG + r.DebtLTCG + r.HybridLTCG
}

// TotalSTCG sums reported short-term gains across asset classes.
func (r ReportedValues) TotalSTCG() float64 {
	return r.EquitySTCG + r.DebtSTCG + r.HybridSTCG
}

// SchemeCapitalGains accumulates realized gains for one scheme+folio within a
// financial year, for drill-down reporting.
type SchemeCapitalGains struct {
	Scheme     string     `json:"scheme"`
	ISIN       string     `json:"isin"`
	Folio      string     `json:"folio"`
	AssetClass AssetClass `json:"asset_class"`

	LTCG               float64 `json:"ltcg"`
	STCG               float64 `json:"stcg"`
	DisposalCount      int     `json:"disposal_count"`
	DisposalValue      float64 `json:"disposal_value"`
	GrandfatheredValue float64 `json:"grandfathered_value"`
}

// FYCapitalGains holds everything known about one financial year: the
// FIFO-computed per-class totals, the registrar-reported totals, the equity
// LTCG exemption applied for tax-liability display, and the reconciliation
// outcome.
type FYCapitalGains struct {
	FinancialYear string `json:"financial_year"`

	EquityLTCG float64 `json:"equity_ltcg"`
	EquitySTCG float64 `json:"equity_stcg"`
	HybridLTCG float64 `json:"hybrid_ltcg"`
	HybridSTCG float64 `json:"hybrid_stcg"`
	DebtLTCG   float64 `json:"debt_ltcg"`
	DebtSTCG   float64 `json:"debt_stcg"`

	Reported    ReportedValues `json:"reported"`
	HasComputed bool           `json:"has_computed"`
	HasReported bool           `json:"has_reported"`

	// Exemption applies only to the taxable-LTCG derivation; reconciliation
	// always compares gross computed against gross reported.
	ExemptionLimit    float64 `json:"exemption_limit"`
	TaxableEquityLTCG float64 `json:"taxable_equity_ltcg"`

	Schemes []*SchemeCapitalGains `json:"schemes"`

	Status ReconciliationStatus `json:"status"`
	Notes  []string             `json:"notes,omitempty"`
}

// ComputedLTCG sums FIFO-computed long-term gains across asset classes.
func (f *FYCapitalGains) ComputedLTCG() float64 {
	return f.EquityLTCG + f.HybridLTCG + f.DebtLTCG
}

// ComputedSTCG sums FIFO-computed short-term gains across asset classes.
func (f *FYCapitalGains) ComputedSTCG() float64 {
	return f.EquitySTCG + f.HybridSTCG + f.DebtSTCG
}
