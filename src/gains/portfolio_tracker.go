package gains

import (
	"math"
	"sort"

	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/models"
)

// trackerKey identifies one lot ledger: the same scheme held in two folios is
// two independent FIFO queues.
type trackerKey struct {
	Folio string
	ISIN  string
	Class models.AssetClass
}

// PortfolioFIFOTracker owns all lot ledgers of one portfolio and routes each
// transaction to the right one, creating ledgers lazily on first use.
type PortfolioFIFOTracker struct {
	fmv      fmv.Provider
	trackers map[trackerKey]*FIFOUnitTracker
	order    []trackerKey
}

func NewPortfolioFIFOTracker(provider fmv.Provider) *PortfolioFIFOTracker {
	return &PortfolioFIFOTracker{
		fmv:      provider,
		trackers: make(map[trackerKey]*FIFOUnitTracker),
	}
}

func (p *PortfolioFIFOTracker) tracker(tx models.Transaction) *FIFOUnitTracker {
	key := trackerKey{Folio: tx.Folio, ISIN: tx.ISIN, Class: tx.AssetClass}
	t, ok := p.trackers[key]
	if !ok {
		t = NewFIFOUnitTracker(tx.Scheme, tx.ISIN, tx.Folio, tx.AssetClass, p.fmv)
		p.trackers[key] = t
		p.order = append(p.order, key)
	}
	return t
}

// ProcessTransaction routes one transaction to its ledger. Acquisitions
// (including switch-ins, which start a fresh lot dated at the switch) return
// no results; disposals (including switch-outs, which behave exactly like
// redemptions) return one GainResult per consumed lot. Dividend, tax and
// unclassified kinds are not matchable and return nothing.
func (p *PortfolioFIFOTracker) ProcessTransaction(tx models.Transaction) ([]models.GainResult, error) {
	switch {
	case tx.Kind.IsAcquisition():
		p.tracker(tx).AddPurchase(tx.Date, math.Abs(tx.Units), tx.Price, math.Abs(tx.Amount))
		return nil, nil
	case tx.Kind.IsDisposal():
		return p.tracker(tx).ProcessDisposal(tx.Date, math.Abs(tx.Units), tx.Price, math.Abs(tx.Amount))
	default:
		return nil, nil
	}
}

// Holdings returns the open-lot view of every ledger with units still held,
// sorted by folio then scheme for stable output.
func (p *PortfolioFIFOTracker) Holdings() []models.SchemeHolding {
	var holdings []models.SchemeHolding
	for _, key := range p.order {
		t := p.trackers[key]
		open := t.OpenUnits()
		if open <= unitEpsilon {
			continue
		}
		h := models.SchemeHolding{
			Scheme:     t.scheme,
			ISIN:       t.isin,
			Folio:      t.folio,
			AssetClass: t.assetClass,
			Units:      open,
		}
		for _, lot := range t.Lots() {
			if lot.RemainingUnits <= unitEpsilon {
				continue
			}
			h.CostValue += lot.RemainingUnits * lot.Price
			h.Lots = append(h.Lots, lot)
		}
		holdings = append(holdings, h)
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		if holdings[i].Folio != holdings[j].Folio {
			return holdings[i].Folio < holdings[j].Folio
		}
		return holdings[i].Scheme < holdings[j].Scheme
	})
	return holdings
}
