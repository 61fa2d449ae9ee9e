package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/fundfolio/src/config"
	"github.com/username/fundfolio/src/models"
	"github.com/username/fundfolio/src/services"
	"github.com/username/fundfolio/src/utils"
)

type TransactionHandler struct {
	gainsService services.GainsService
}

func NewTransactionHandler(gainsService services.GainsService) *TransactionHandler {
	return &TransactionHandler{gainsService: gainsService}
}

// transactionPayload is the wire form of one classified transaction; dates
// arrive as "2006-01-02" strings.
type transactionPayload struct {
	Scheme     string  `json:"scheme"`
	ISIN       string  `json:"isin"`
	Folio      string  `json:"folio"`
	AssetClass string  `json:"asset_class"`
	Kind       string  `json:"kind"`
	Date       string  `json:"date"`
	Units      float64 `json:"units"`
	Price      float64 `json:"price"`
	Amount     float64 `json:"amount"`
}

func (p transactionPayload) toModel() (models.Transaction, error) {
	date := utils.ParseDate(p.Date)
	if date.IsZero() {
		return models.Transaction{}, fmt.Errorf("invalid date %q, expected %s", p.Date, utils.DefaultDateFormat)
	}
	return models.Transaction{
		Scheme:     p.Scheme,
		ISIN:       p.ISIN,
		Folio:      p.Folio,
		AssetClass: models.AssetClass(p.AssetClass),
		Kind:       models.TransactionKind(p.Kind),
		Date:       date,
		Units:      p.Units,
		Price:      p.Price,
		Amount:     p.Amount,
	}, nil
}

// HandleIngestTransactions accepts a JSON array of classified transactions
// and persists them idempotently.
func (h *TransactionHandler) HandleIngestTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if config.Cfg != nil && config.Cfg.MaxIngestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxIngestBytes)
	}

	var payload []transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body: expected a JSON array of transactions", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		utils.SendJSONError(w, "No transactions supplied", http.StatusBadRequest)
		return
	}

	txs := make([]models.Transaction, 0, len(payload))
	for i, p := range payload {
		tx, err := p.toModel()
		if err != nil {
			utils.SendJSONError(w, fmt.Sprintf("transaction %d: %v", i, err), http.StatusBadRequest)
			return
		}
		txs = append(txs, tx)
	}

	inserted, err := h.gainsService.IngestTransactions(userID, txs)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransaction) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("Error ingesting transactions: %v", err), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"received": len(txs),
		"inserted": inserted,
		"skipped":  len(txs) - inserted,
	}, http.StatusOK)
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	txs, err := h.gainsService.GetTransactions(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions: %v", err), http.StatusInternalServerError)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

func (h *TransactionHandler) HandleDeleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.gainsService.DeleteAllTransactions(userID); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error deleting transactions: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "all transactions deleted"}, http.StatusOK)
}
