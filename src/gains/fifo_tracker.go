package gains

import (
	"fmt"
	"math"
	"time"

	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/models"
)

// Statutory dates and holding-period thresholds for Indian capital gains.
var (
	// GrandfatheringCutoff is the date whose closing NAV becomes the stepped-up
	// cost basis for qualifying long-term equity-like holdings.
	GrandfatheringCutoff = time.Date(2018, time.January, 31, 0, 0, 0, 0, time.UTC)

	// DebtLTCGSunset: debt fund disposals on or after this date are taxed as
	// STCG regardless of holding period.
	DebtLTCGSunset = time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
)

const (
	equityLTCGDays = 365
	debtLTCGDays   = 1095

	// Mutual fund units are reported to 3-4 decimals; differences below this
	// are registrar rounding, not real unit movements.
	unitEpsilon = 1e-6
)

// FIFOMismatchError reports a disposal that asks for more units than the
// ledger holds open: the statutory record disagrees with the parsed stream.
// The match is never truncated to fit.
type FIFOMismatchError struct {
	Scheme    string
	Folio     string
	Date      time.Time
	Requested float64
	Available float64
}

func (e *FIFOMismatchError) Error() string {
	return fmt.Sprintf("FIFO mismatch for %s (folio %s) on %s: disposal of %.4f units exceeds %.4f open units",
		e.Scheme, e.Folio, e.Date.Format("2006-01-02"), e.Requested, e.Available)
}

// FIFOUnitTracker is the ordered lot ledger for one scheme within one folio.
// Purchases append lots; disposals consume them oldest-first, splitting lots
// where needed. Drained lots stay in the ledger for audit.
type FIFOUnitTracker struct {
	scheme     string
	isin       string
	folio      string
	assetClass models.AssetClass
	fmv        fmv.Provider
	lots       []*models.PurchaseLot
}

func NewFIFOUnitTracker(scheme, isin, folio string, class models.AssetClass, provider fmv.Provider) *FIFOUnitTracker {
	return &FIFOUnitTracker{
		scheme:     scheme,
		isin:       isin,
		folio:      folio,
		assetClass: class,
		fmv:        provider,
	}
}

// AddPurchase appends a new lot at the tail of the ledger.
func (t *FIFOUnitTracker) AddPurchase(date time.Time, units, price, amount float64) {
	t.lots = append(t.lots, &models.PurchaseLot{
		Date:           date,
		OriginalUnits:  units,
		RemainingUnits: units,
		Price:          price,
		Amount:         amount,
	})
}

// OpenUnits is the total of units not yet consumed by disposals.
func (t *FIFOUnitTracker) OpenUnits() float64 {
	var total float64
	for _, lot := range t.lots {
		total += lot.RemainingUnits
	}
	return total
}

// Lots returns a copy of the full lot ledger, drained lots included.
func (t *FIFOUnitTracker) Lots() []models.PurchaseLot {
	out := make([]models.PurchaseLot, len(t.lots))
	for i, lot := range t.lots {
		out[i] = *lot
	}
	return out
}

// ProcessDisposal consumes open lots oldest-first to cover a sale of the given
// units, emitting one GainResult per consumed (lot, quantity) pair. If the
// ledger holds fewer open units than requested the disposal is rejected whole
// with a *FIFOMismatchError and no lot is touched.
func (t *FIFOUnitTracker) ProcessDisposal(date time.Time, units, price, amount float64) ([]models.GainResult, error) {
	available := t.OpenUnits()
	if units > available+unitEpsilon {
		return nil, &FIFOMismatchError{
			Scheme:    t.scheme,
			Folio:     t.folio,
			Date:      date,
			Requested: units,
			Available: available,
		}
	}

	var results []models.GainResult
	remaining := units
	for _, lot := range t.lots {
		if remaining <= unitEpsilon {
			break
		}
		if lot.RemainingUnits <= unitEpsilon {
			continue
		}
		matched := math.Min(remaining, lot.RemainingUnits)
		lot.RemainingUnits -= matched
		remaining -= matched
		results = append(results, t.classifyGain(lot, date, matched, price))
	}
	return results, nil
}

// classifyGain computes the realized gain for matched units of one lot:
// holding-period classification, grandfathering step-up, taxable gain.
func (t *FIFOUnitTracker) classifyGain(lot *models.PurchaseLot, saleDate time.Time, units, salePrice float64) models.GainResult {
	holdingDays := int(saleDate.Sub(lot.Date).Hours() / 24)

	var longTerm bool
	if t.assetClass.EquityLike() {
		longTerm = holdingDays > equityLTCGDays
	} else {
		longTerm = holdingDays > debtLTCGDays && saleDate.Before(DebtLTCGSunset)
	}

	result := models.GainResult{
		Scheme:        t.scheme,
		ISIN:          t.isin,
		Folio:         t.folio,
		AssetClass:    t.assetClass,
		SaleDate:      saleDate,
		PurchaseDate:  lot.Date,
		Units:         units,
		PurchasePrice: lot.Price,
		SalePrice:     salePrice,
		SaleValue:     salePrice * units,
		CostBasis:     lot.Price * units,
		IsLongTerm:    longTerm,
		GainType:      models.GainSTCG,
	}
	if longTerm {
		result.GainType = models.GainLTCG
	}

	if t.assetClass.EquityLike() && longTerm && lot.Date.Before(GrandfatheringCutoff) {
		fmvPrice, ok := t.fmv.FMV(t.isin, GrandfatheringCutoff)
		if !ok {
			result.GrandfatheringSkipped = true
		} else {
			stepped := math.Max(lot.Price, math.Min(salePrice, fmvPrice))
			result.CostBasis = stepped * units
			result.Grandfathered = true
			result.FMVAtCutoff = fmvPrice
		}
	}

	result.Gain = result.SaleValue - result.CostBasis
	return result
}
