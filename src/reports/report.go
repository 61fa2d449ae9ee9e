// Package reports renders reconciliation output as plain text. All numbers
// come from the gains engine; only formatting lives here.
package reports

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/username/fundfolio/src/models"
)

// BuildReconciliationReport renders the per-year capital gains summaries, the
// per-scheme drill-down and any diagnostics as a human-readable report.
func BuildReconciliationReport(years []*models.FYCapitalGains, diags []models.Diagnostic) string {
	var b strings.Builder
	b.WriteString("CAPITAL GAINS RECONCILIATION\n")
	b.WriteString("============================\n")

	if len(years) == 0 {
		b.WriteString("\nNo capital gains data.\n")
	}

	for _, y := range years {
		fmt.Fprintf(&b, "\nFY %s  [%s]\n", y.FinancialYear, y.Status)
		for _, note := range y.Notes {
			fmt.Fprintf(&b, "  note: %s\n", note)
		}

		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  \tLTCG computed\tSTCG computed\tLTCG reported\tSTCG reported")
		fmt.Fprintf(w, "  Equity\t%.2f\t%.2f\t%.2f\t%.2f\n",
			y.EquityLTCG, y.EquitySTCG, y.Reported.EquityLTCG, y.Reported.EquitySTCG)
		fmt.Fprintf(w, "  Hybrid\t%.2f\t%.2f\t%.2f\t%.2f\n",
			y.HybridLTCG, y.HybridSTCG, y.Reported.HybridLTCG, y.Reported.HybridSTCG)
		fmt.Fprintf(w, "  Debt\t%.2f\t%.2f\t%.2f\t%.2f\n",
			y.DebtLTCG, y.DebtSTCG, y.Reported.DebtLTCG, y.Reported.DebtSTCG)
		fmt.Fprintf(w, "  Total\t%.2f\t%.2f\t%.2f\t%.2f\n",
			y.ComputedLTCG(), y.ComputedSTCG(), y.Reported.TotalLTCG(), y.Reported.TotalSTCG())
		w.Flush()

		fmt.Fprintf(&b, "  Equity LTCG exemption: %.2f  Taxable equity LTCG: %.2f\n",
			y.ExemptionLimit, y.TaxableEquityLTCG)

		if len(y.Schemes) > 0 {
			b.WriteString("  Schemes:\n")
			sw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
			fmt.Fprintln(sw, "    Scheme\tFolio\tLTCG\tSTCG\tDisposals\tDisposal value")
			for _, s := range y.Schemes {
				fmt.Fprintf(sw, "    %s\t%s\t%.2f\t%.2f\t%d\t%.2f\n",
					s.Scheme, s.Folio, s.LTCG, s.STCG, s.DisposalCount, s.DisposalValue)
			}
			sw.Flush()
		}
	}

	if len(diags) > 0 {
		b.WriteString("\nDiagnostics\n-----------\n")
		for _, d := range diags {
			if d.Scheme != "" {
				fmt.Fprintf(&b, "  [%s] %s (folio %s): %s\n", d.Severity, d.Scheme, d.Folio, d.Message)
			} else {
				fmt.Fprintf(&b, "  [%s] %s\n", d.Severity, d.Message)
			}
		}
	}
	return b.String()
}
