package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/fundfolio/src/models"
)

func TestBuildReconciliationReportEmpty(t *testing.T) {
	out := BuildReconciliationReport(nil, nil)
	assert.Contains(t, out, "CAPITAL GAINS RECONCILIATION")
	assert.Contains(t, out, "No capital gains data.")
	assert.NotContains(t, out, "Diagnostics")
}

func TestBuildReconciliationReportFullYear(t *testing.T) {
	years := []*models.FYCapitalGains{
		{
			FinancialYear:     "2022-23",
			EquityLTCG:        150000,
			EquitySTCG:        5000,
			DebtSTCG:          1200,
			Reported:          models.ReportedValues{EquityLTCG: 149500, EquitySTCG: 5000, DebtSTCG: 1200},
			HasComputed:       true,
			HasReported:       true,
			ExemptionLimit:    100000,
			TaxableEquityLTCG: 50000,
			Status:            models.StatusMatched,
			Notes:             []string{"difference 0.32% of reported total"},
			Schemes: []*models.SchemeCapitalGains{
				{
					Scheme:        "HDFC Top 100",
					ISIN:          "INF179K01608",
					Folio:         "12345/67",
					AssetClass:    models.AssetEquity,
					LTCG:          150000,
					STCG:          5000,
					DisposalCount: 3,
					DisposalValue: 400000,
				},
			},
		},
	}
	diags := []models.Diagnostic{
		{Severity: models.SeverityWarning, Scheme: "HDFC Top 100", Folio: "12345/67", Message: "zero units/amount transaction on 2022-05-01 skipped"},
	}

	out := BuildReconciliationReport(years, diags)

	assert.Contains(t, out, "FY 2022-23  [MATCHED]")
	assert.Contains(t, out, "note: difference 0.32% of reported total")
	assert.Contains(t, out, "150000.00")
	assert.Contains(t, out, "Equity LTCG exemption: 100000.00  Taxable equity LTCG: 50000.00")
	assert.Contains(t, out, "HDFC Top 100")
	assert.Contains(t, out, "Diagnostics")
	assert.Contains(t, out, "[WARNING] HDFC Top 100 (folio 12345/67)")
}

func TestBuildReconciliationReportSchemelessDiagnostic(t *testing.T) {
	diags := []models.Diagnostic{
		{Severity: models.SeverityFault, Message: "statement truncated"},
	}
	out := BuildReconciliationReport(nil, diags)
	assert.Contains(t, out, "[FAULT] statement truncated")
}
