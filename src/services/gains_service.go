package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fundfolio/src/config"
	"github.com/username/fundfolio/src/database"
	"github.com/username/fundfolio/src/fmv"
	"github.com/username/fundfolio/src/gains"
	"github.com/username/fundfolio/src/logger"
	"github.com/username/fundfolio/src/models"
	"github.com/username/fundfolio/src/security/validation"
	"github.com/username/fundfolio/src/utils"
)

const (
	ckCapitalGains = "res_capital_gains_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type gainsServiceImpl struct {
	fmvProvider  fmv.Provider
	emailService EmailService
	reportCache  *cache.Cache
}

func NewGainsService(provider fmv.Provider, emailService EmailService, reportCache *cache.Cache) GainsService {
	return &gainsServiceImpl{
		fmvProvider:  provider,
		emailService: emailService,
		reportCache:  reportCache,
	}
}

// IngestTransactions validates, sanitizes and persists a batch of classified
// transactions. Duplicates (same user, same content hash) are skipped, so a
// statement can be re-uploaded safely. Returns the number of new rows.
func (s *gainsServiceImpl) IngestTransactions(userID int64, txs []models.Transaction) (int, error) {
	startTime := time.Now()
	logger.L.Info("IngestTransactions START", "userID", userID, "count", len(txs))

	for i := range txs {
		txs[i].Scheme = validation.SanitizeText(txs[i].Scheme)
		txs[i].ISIN = validation.SanitizeText(txs[i].ISIN)
		txs[i].Folio = validation.SanitizeText(txs[i].Folio)

		if !txs[i].Kind.Valid() {
			return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, txs[i].Kind)
		}
		if txs[i].Scheme == "" || txs[i].ISIN == "" || txs[i].Folio == "" {
			return 0, fmt.Errorf("%w: scheme, isin and folio are required", ErrInvalidTransaction)
		}
		if txs[i].Date.IsZero() {
			return 0, fmt.Errorf("%w: missing date", ErrInvalidTransaction)
		}
		switch txs[i].AssetClass {
		case models.AssetEquity, models.AssetDebt, models.AssetHybrid, models.AssetOther:
		default:
			return 0, fmt.Errorf("%w: unknown asset class %q", ErrInvalidTransaction, txs[i].AssetClass)
		}
		// Back-fill price from amount when the statement omits it.
		if txs[i].Price == 0 && txs[i].Units != 0 {
			txs[i].Price = txs[i].Amount / txs[i].Units
		}
		txs[i].HashID = transactionHash(txs[i])
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO fund_transactions
		(user_id, scheme, isin, folio, asset_class, kind, tx_date, units, price, amount, hash_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, tx := range txs {
		_, err := stmt.Exec(userID, tx.Scheme, tx.ISIN, tx.Folio, string(tx.AssetClass),
			string(tx.Kind), utils.FormatDate(tx.Date), tx.Units, tx.Price, tx.Amount, tx.HashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				logger.L.Debug("Skipping duplicate transaction on ingest", "userID", userID, "hash_id", tx.HashID)
				continue
			}
			return 0, fmt.Errorf("error inserting transaction for %s: %w", tx.Scheme, err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transactions: %w", err)
	}

	s.InvalidateUserCache(userID)
	logger.L.Info("IngestTransactions END", "userID", userID, "inserted", inserted, "duration", time.Since(startTime))
	return inserted, nil
}

func transactionHash(tx models.Transaction) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s|%f|%f",
		tx.ISIN, tx.Folio, tx.Kind, tx.AssetClass, utils.FormatDate(tx.Date), tx.Units, tx.Amount)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// GetCapitalGains runs (or serves from cache) a full reconciliation for one
// user: FIFO matching over every stored transaction, aggregation by financial
// year, and comparison against any stored registrar totals.
func (s *gainsServiceImpl) GetCapitalGains(userID int64) (*CapitalGainsResult, error) {
	cacheKey := fmt.Sprintf(ckCapitalGains, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Capital gains served from cache", "userID", userID)
		return cached.(*CapitalGainsResult), nil
	}

	txs, err := s.GetTransactions(userID)
	if err != nil {
		return nil, err
	}

	reconciler := gains.NewCapitalGainsReconciler(s.fmvProvider)
	if config.Cfg != nil {
		reconciler.SetThresholds(config.Cfg.MatchedDiffPct, config.Cfg.MinorDiffPct)
	}
	reconciler.ProcessTransactions(txs)

	if err := s.loadReportedValuesInto(userID, reconciler); err != nil {
		return nil, err
	}
	reconciler.ReconcileAll()

	result := &CapitalGainsResult{
		Years:       reconciler.Results(),
		Holdings:    reconciler.Holdings(),
		Diagnostics: reconciler.Diagnostics(),
	}

	if err := s.persistSummaries(userID, result.Years); err != nil {
		logger.L.Error("Failed to persist capital gains summaries", "userID", userID, "error", err)
	}
	s.alertOnMajorDiff(userID, result.Years)

	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

func (s *gainsServiceImpl) loadReportedValuesInto(userID int64, reconciler *gains.CapitalGainsReconciler) error {
	rows, err := database.DB.Query(`
		SELECT financial_year, equity_ltcg, equity_stcg, debt_ltcg, debt_stcg, hybrid_ltcg, hybrid_stcg
		FROM reported_values WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("error querying reported values for userID %d: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var fy string
		var rv models.ReportedValues
		if err := rows.Scan(&fy, &rv.EquityLTCG, &rv.EquitySTCG, &rv.DebtLTCG, &rv.DebtSTCG,
			&rv.HybridLTCG, &rv.HybridSTCG); err != nil {
			return fmt.Errorf("error scanning reported values: %w", err)
		}
		reconciler.LoadReportedValues(fy, rv)
	}
	return rows.Err()
}

func (s *gainsServiceImpl) persistSummaries(userID int64, years []*models.FYCapitalGains) error {
	for _, y := range years {
		_, err := database.DB.Exec(`
			INSERT INTO fy_capital_gains
				(user_id, financial_year, equity_ltcg, equity_stcg, hybrid_ltcg, hybrid_stcg,
				 debt_ltcg, debt_stcg, taxable_equity_ltcg, status, notes, computed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id, financial_year) DO UPDATE SET
				equity_ltcg = excluded.equity_ltcg,
				equity_stcg = excluded.equity_stcg,
				hybrid_ltcg = excluded.hybrid_ltcg,
				hybrid_stcg = excluded.hybrid_stcg,
				debt_ltcg = excluded.debt_ltcg,
				debt_stcg = excluded.debt_stcg,
				taxable_equity_ltcg = excluded.taxable_equity_ltcg,
				status = excluded.status,
				notes = excluded.notes,
				computed_at = CURRENT_TIMESTAMP`,
			userID, y.FinancialYear,
			utils.RoundFloat(y.EquityLTCG, 2), utils.RoundFloat(y.EquitySTCG, 2),
			utils.RoundFloat(y.HybridLTCG, 2), utils.RoundFloat(y.HybridSTCG, 2),
			utils.RoundFloat(y.DebtLTCG, 2), utils.RoundFloat(y.DebtSTCG, 2),
			utils.RoundFloat(y.TaxableEquityLTCG, 2), string(y.Status), strings.Join(y.Notes, "; "))
		if err != nil {
			return err
		}
	}
	return nil
}

// alertOnMajorDiff emails the user about any year whose computed totals
// diverge badly from the registrar statement. Fire-and-forget.
func (s *gainsServiceImpl) alertOnMajorDiff(userID int64, years []*models.FYCapitalGains) {
	if config.Cfg == nil || !config.Cfg.AlertOnMajorDiff {
		return
	}
	var flagged []*models.FYCapitalGains
	for _, y := range years {
		if y.Status == models.StatusMajorDiff {
			flagged = append(flagged, y)
		}
	}
	if len(flagged) == 0 {
		return
	}

	user, err := models.GetUserByID(database.DB, userID)
	if err != nil {
		logger.L.Error("Cannot send reconciliation alert, user lookup failed", "userID", userID, "error", err)
		return
	}
	for _, y := range flagged {
		y := y
		go func() {
			note := strings.Join(y.Notes, "; ")
			if err := s.emailService.SendReconciliationAlert(user.Email, user.Username, y.FinancialYear, y.Status, note); err != nil {
				logger.L.Error("Failed to send reconciliation alert", "userID", userID, "fy", y.FinancialYear, "error", err)
			}
		}()
	}
}

func (s *gainsServiceImpl) GetTransactions(userID int64) ([]models.Transaction, error) {
	rows, err := database.DB.Query(`
		SELECT id, scheme, isin, folio, asset_class, kind, tx_date, units, price, amount, hash_id
		FROM fund_transactions
		WHERE user_id = ?
		ORDER BY tx_date ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var class, kind, dateStr string
		if err := rows.Scan(&tx.ID, &tx.Scheme, &tx.ISIN, &tx.Folio, &class, &kind, &dateStr,
			&tx.Units, &tx.Price, &tx.Amount, &tx.HashID); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		tx.AssetClass = models.AssetClass(class)
		tx.Kind = models.TransactionKind(kind)
		tx.Date = utils.ParseDate(dateStr)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *gainsServiceImpl) DeleteAllTransactions(userID int64) error {
	_, err := database.DB.Exec(`DELETE FROM fund_transactions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("error deleting transactions for userID %d: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *gainsServiceImpl) SaveReportedValues(userID int64, fy string, rv models.ReportedValues) error {
	if _, err := gains.FinancialYearStart(fy); err != nil {
		return err
	}
	_, err := database.DB.Exec(`
		INSERT INTO reported_values
			(user_id, financial_year, equity_ltcg, equity_stcg, debt_ltcg, debt_stcg, hybrid_ltcg, hybrid_stcg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, financial_year) DO UPDATE SET
			equity_ltcg = excluded.equity_ltcg,
			equity_stcg = excluded.equity_stcg,
			debt_ltcg = excluded.debt_ltcg,
			debt_stcg = excluded.debt_stcg,
			hybrid_ltcg = excluded.hybrid_ltcg,
			hybrid_stcg = excluded.hybrid_stcg`,
		userID, fy, rv.EquityLTCG, rv.EquitySTCG, rv.DebtLTCG, rv.DebtSTCG, rv.HybridLTCG, rv.HybridSTCG)
	if err != nil {
		return fmt.Errorf("error saving reported values for userID %d FY %s: %w", userID, fy, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *gainsServiceImpl) SaveFMVPrices(prices []models.FMVPrice) (int, error) {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`
		INSERT INTO fmv_prices (isin, price_date, nav) VALUES (?, ?, ?)
		ON CONFLICT(isin, price_date) DO UPDATE SET nav = excluded.nav`)
	if err != nil {
		return 0, fmt.Errorf("error preparing FMV insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, p := range prices {
		if p.ISIN == "" || p.Date.IsZero() || p.NAV <= 0 {
			return 0, fmt.Errorf("%w: FMV price needs isin, date and positive nav", ErrInvalidTransaction)
		}
		if _, err := stmt.Exec(p.ISIN, utils.FormatDate(p.Date), p.NAV); err != nil {
			return 0, fmt.Errorf("error inserting FMV price for %s: %w", p.ISIN, err)
		}
		saved++
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing FMV prices: %w", err)
	}
	return saved, nil
}

func (s *gainsServiceImpl) InvalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckCapitalGains, userID))
	logger.L.Debug("User cache invalidated", "userID", userID)
}
