package gains

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/models"
)

// Reconciliation tolerance thresholds, in percent of the reported total.
// Business-configured constants, not derived.
const (
	DefaultMatchedPct   = 1.0
	DefaultMinorDiffPct = 5.0
)

// CapitalGainsReconciler drives a portfolio's full transaction stream through
// FIFO matching, aggregates the resulting gains per financial year and asset
// class, and reconciles the computed totals against registrar-reported ones.
//
// A reconciler is single-use and single-threaded: build one per run, feed it
// the whole stream, then read results. Independent portfolios get independent
// reconcilers.
type CapitalGainsReconciler struct {
	portfolio *PortfolioFIFOTracker
	years     map[string]*models.FYCapitalGains
	schemes   map[string]*models.SchemeCapitalGains
	diags     []models.Diagnostic
	faulted   map[trackerKey]bool

	matchedPct float64
	minorPct   float64
}

func NewCapitalGainsReconciler(provider fmv.Provider) *CapitalGainsReconciler {
	return &CapitalGainsReconciler{
		portfolio:  NewPortfolioFIFOTracker(provider),
		years:      make(map[string]*models.FYCapitalGains),
		schemes:    make(map[string]*models.SchemeCapitalGains),
		faulted:    make(map[trackerKey]bool),
		matchedPct: DefaultMatchedPct,
		minorPct:   DefaultMinorDiffPct,
	}
}

// SetThresholds overrides the reconciliation tolerance percentages.
func (r *CapitalGainsReconciler) SetThresholds(matchedPct, minorPct float64) {
	r.matchedPct = matchedPct
	r.minorPct = minorPct
}

// ProcessTransactions sorts the stream by date (stable, ties keep input
// order — FIFO correctness depends on this being deterministic) and drives
// each transaction through the portfolio matcher. Malformed transactions are
// skipped with a warning; a FIFO mismatch aborts that holding with a fault
// and the rest of the portfolio continues.
func (r *CapitalGainsReconciler) ProcessTransactions(txs []models.Transaction) {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, tx := range sorted {
		key := trackerKey{Folio: tx.Folio, ISIN: tx.ISIN, Class: tx.AssetClass}
		if r.faulted[key] {
			continue
		}
		if tx.Kind == models.KindUnclassified || !tx.Kind.Valid() {
			r.warn(tx, fmt.Sprintf("unclassified transaction on %s skipped", tx.Date.Format("2006-01-02")))
			continue
		}
		if !tx.Kind.Matchable() {
			continue
		}
		if tx.Units == 0 || tx.Amount == 0 {
			r.warn(tx, fmt.Sprintf("zero units/amount transaction on %s skipped", tx.Date.Format("2006-01-02")))
			continue
		}

		results, err := r.portfolio.ProcessTransaction(tx)
		if err != nil {
			var mismatch *FIFOMismatchError
			if errors.As(err, &mismatch) {
				r.faulted[key] = true
				r.diags = append(r.diags, models.Diagnostic{
					Severity: models.SeverityFault,
					Scheme:   tx.Scheme,
					Folio:    tx.Folio,
					Message:  mismatch.Error(),
				})
				continue
			}
			r.warn(tx, err.Error())
			continue
		}
		for _, g := range results {
			r.recordGain(g)
		}
	}
}

func (r *CapitalGainsReconciler) warn(tx models.Transaction, msg string) {
	r.diags = append(r.diags, models.Diagnostic{
		Severity: models.SeverityWarning,
		Scheme:   tx.Scheme,
		Folio:    tx.Folio,
		Message:  msg,
	})
}

func (r *CapitalGainsReconciler) year(fy string) *models.FYCapitalGains {
	y, ok := r.years[fy]
	if !ok {
		y = &models.FYCapitalGains{
			FinancialYear: fy,
			Status:        models.StatusNotReconciled,
		}
		r.years[fy] = y
	}
	return y
}

// recordGain buckets one matched gain into its financial year. The asset
// class decides the bucket; for the debt bucket the post-sunset STCG override
// is re-checked against the sale date rather than trusting the GainResult's
// own flag, so a lot classified before the regime change still lands in the
// right bucket when sold after it.
func (r *CapitalGainsReconciler) recordGain(g models.GainResult) {
	fy := FinancialYear(g.SaleDate)
	y := r.year(fy)
	y.HasComputed = true

	longTerm := g.IsLongTerm
	switch g.AssetClass {
	case models.AssetEquity:
		if longTerm {
			y.EquityLTCG += g.Gain
		} else {
			y.EquitySTCG += g.Gain
		}
	case models.AssetHybrid:
		if longTerm {
			y.HybridLTCG += g.Gain
		} else {
			y.HybridSTCG += g.Gain
		}
	default:
		if longTerm && !g.SaleDate.Before(DebtLTCGSunset) {
			longTerm = false
		}
		if longTerm {
			y.DebtLTCG += g.Gain
		} else {
			y.DebtSTCG += g.Gain
		}
	}

	if g.GrandfatheringSkipped {
		r.diags = append(r.diags, models.Diagnostic{
			Severity: models.SeverityWarning,
			Scheme:   g.Scheme,
			Folio:    g.Folio,
			Message: fmt.Sprintf("grandfathering not applied for lot of %s: no FMV on %s",
				g.PurchaseDate.Format("2006-01-02"), GrandfatheringCutoff.Format("2006-01-02")),
		})
	}

	key := fy + "|" + g.Folio + "|" + g.ISIN
	sc, ok := r.schemes[key]
	if !ok {
		sc = &models.SchemeCapitalGains{
			Scheme:     g.Scheme,
			ISIN:       g.ISIN,
			Folio:      g.Folio,
			AssetClass: g.AssetClass,
		}
		r.schemes[key] = sc
		y.Schemes = append(y.Schemes, sc)
	}
	if longTerm {
		sc.LTCG += g.Gain
	} else {
		sc.STCG += g.Gain
	}
	sc.DisposalCount++
	sc.DisposalValue += g.SaleValue
	if g.Grandfathered {
		sc.GrandfatheredValue += g.CostBasis
	}
}

// LoadReportedValues records the registrar-reported totals for a financial
// year, creating the year entry if no computed gain has touched it yet.
func (r *CapitalGainsReconciler) LoadReportedValues(fy string, rv models.ReportedValues) {
	y := r.year(fy)
	y.Reported = rv
	y.HasReported = true
}

// Reconcile computes the reconciliation status of one financial year. It is
// recomputed on demand, never sticky, and always yields a status for any
// combination of present/absent computed and reported totals.
func (r *CapitalGainsReconciler) Reconcile(fy string) models.ReconciliationStatus {
	y, ok := r.years[fy]
	if !ok {
		return models.StatusNotReconciled
	}

	computedLTCG := y.ComputedLTCG()
	computedSTCG := y.ComputedSTCG()
	reportedLTCG := y.Reported.TotalLTCG()
	reportedSTCG := y.Reported.TotalSTCG()
	totalComputed := computedLTCG + computedSTCG
	totalReported := reportedLTCG + reportedSTCG

	y.Notes = nil
	switch {
	case totalComputed == 0 && totalReported == 0:
		y.Status = models.StatusMatched
		y.Notes = append(y.Notes, "no gains")
	case totalReported == 0:
		y.Status = models.StatusFIFOOnly
		if !y.HasReported {
			y.Notes = append(y.Notes, "no registrar statement loaded")
		}
	case totalComputed == 0:
		y.Status = models.StatusRTAOnly
		y.Notes = append(y.Notes, "registrar reports gains the ledger does not reproduce")
	default:
		pctDiff := (math.Abs(computedLTCG-reportedLTCG) + math.Abs(computedSTCG-reportedSTCG)) /
			math.Abs(totalReported) * 100
		switch {
		case pctDiff < r.matchedPct:
			y.Status = models.StatusMatched
		case pctDiff < r.minorPct:
			y.Status = models.StatusMinorDiff
		default:
			y.Status = models.StatusMajorDiff
		}
		y.Notes = append(y.Notes, fmt.Sprintf("difference %.2f%% of reported total", pctDiff))
	}

	y.ExemptionLimit = EquityLTCGExemption(fy)
	y.TaxableEquityLTCG = math.Max(0, y.EquityLTCG-y.ExemptionLimit)
	return y.Status
}

// ReconcileAll reconciles every financial year seen so far.
func (r *CapitalGainsReconciler) ReconcileAll() {
	for fy := range r.years {
		r.Reconcile(fy)
	}
}

// Results returns the per-year aggregates sorted by financial year.
func (r *CapitalGainsReconciler) Results() []*models.FYCapitalGains {
	out := make([]*models.FYCapitalGains, 0, len(r.years))
	for _, y := range r.years {
		out = append(out, y)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinancialYear < out[j].FinancialYear
	})
	return out
}

// Diagnostics returns the warnings and faults accumulated during processing.
func (r *CapitalGainsReconciler) Diagnostics() []models.Diagnostic {
	return r.diags
}

// Holdings exposes the portfolio's remaining open lots after matching.
func (r *CapitalGainsReconciler) Holdings() []models.SchemeHolding {
	return r.portfolio.Holdings()
}
