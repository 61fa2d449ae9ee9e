// Package fmv supplies fair-market-value lookups for the 31-01-2018
// grandfathering cutoff. The correct NAVs are external, time-varying facts, so
// the engine only ever sees them through the Provider interface.
package fmv

import (
	"database/sql"
	"time"
)

// Provider resolves the per-unit fair market value of a scheme on a given
// date. The second return value is false when no value is known; callers must
// surface that, never default to actual cost silently.
type Provider interface {
	FMV(isin string, date time.Time) (float64, bool)
}

// StaticProvider serves FMVs from an in-memory table keyed by ISIN and date.
// Used in tests and for small hand-maintained cutoff tables.
type StaticProvider struct {
	prices map[string]map[string]float64
}

const dateKeyFormat = "2006-01-02"

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{prices: make(map[string]map[string]float64)}
}

// Set records the NAV of a scheme on a date.
func (p *StaticProvider) Set(isin string, date time.Time, nav float64) {
	key := date.Format(dateKeyFormat)
	if p.prices[isin] == nil {
		p.prices[isin] = make(map[string]float64)
	}
	p.prices[isin][key] = nav
}

func (p *StaticProvider) FMV(isin string, date time.Time) (float64, bool) {
	nav, ok := p.prices[isin][date.Format(dateKeyFormat)]
	return nav, ok
}

// StoreProvider reads FMVs from the fmv_prices table.
type StoreProvider struct {
	db *sql.DB
}

func NewStoreProvider(db *sql.DB) *StoreProvider {
	return &StoreProvider{db: db}
}

func (p *StoreProvider) FMV(isin string, date time.Time) (float64, bool) {
	var nav float64
	err := p.db.QueryRow(
		`SELECT nav FROM fmv_prices WHERE isin = ? AND price_date = ?`,
		isin, date.Format(dateKeyFormat)).Scan(&nav)
	if err != nil {
		return 0, false
	}
	return nav, true
}
