package models

import "time"

// FMVPrice is one fair-market-value record loaded into the NAV table, keyed
// by scheme ISIN and price date.
type FMVPrice struct {
	ISIN string    `json:"isin"`
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}
