package services

import (
	"errors"

	"github.com/username/fundfolio/src/models"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

// CapitalGainsResult bundles everything one reconciliation run produces: the
// per-year aggregates, the open holdings left after matching, and the
// warnings/faults raised along the way.
type CapitalGainsResult struct {
	Years       []*models.FYCapitalGains `json:"years"`
	Holdings    []models.SchemeHolding   `json:"holdings"`
	Diagnostics []models.Diagnostic      `json:"diagnostics"`
}

// GainsService is the core application service: transaction ingestion,
// capital gains computation with reconciliation, and the external inputs the
// engine depends on (registrar totals, cutoff NAVs).
type GainsService interface {
	IngestTransactions(userID int64, txs []models.Transaction) (int, error)
	GetTransactions(userID int64) ([]models.Transaction, error)
	DeleteAllTransactions(userID int64) error

	GetCapitalGains(userID int64) (*CapitalGainsResult, error)

	SaveReportedValues(userID int64, fy string, rv models.ReportedValues) error
	SaveFMVPrices(prices []models.FMVPrice) (int, error)

	InvalidateUserCache(userID int64)
}

// EmailService notifies a user when reconciliation finds a major difference
// between computed and registrar-reported totals.
type EmailService interface {
	SendReconciliationAlert(toEmail, username, financialYear string, status models.ReconciliationStatus, note string) error
}
