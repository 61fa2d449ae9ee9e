package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/username/fundfolio/src/models"
	"github.com/username/fundfolio/src/reports"
	"github.com/username/fundfolio/src/services"
	"github.com/username/fundfolio/src/utils"
)

type GainsHandler struct {
	gainsService services.GainsService
}

func NewGainsHandler(gainsService services.GainsService) *GainsHandler {
	return &GainsHandler{gainsService: gainsService}
}

// HandleGetCapitalGains returns the full per-year capital gains result with
// holdings and diagnostics.
func (h *GainsHandler) HandleGetCapitalGains(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	result, err := h.gainsService.GetCapitalGains(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing capital gains: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleGetHoldings returns only the open-lot holdings view.
func (h *GainsHandler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	result, err := h.gainsService.GetCapitalGains(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing holdings: %v", err), http.StatusInternalServerError)
		return
	}
	holdings := result.Holdings
	if holdings == nil {
		holdings = []models.SchemeHolding{}
	}
	utils.SendJSON(w, holdings, http.StatusOK)
}

// HandleGetReconciliationReport renders the reconciliation as plain text.
func (h *GainsHandler) HandleGetReconciliationReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	result, err := h.gainsService.GetCapitalGains(userID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing reconciliation report: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, reports.BuildReconciliationReport(result.Years, result.Diagnostics))
}

type reportedValuesPayload struct {
	FinancialYear string                `json:"financial_year"`
	Values        models.ReportedValues `json:"values"`
}

// HandleSaveReportedValues stores registrar-reported totals for a financial
// year, the authoritative side of the reconciliation.
func (h *GainsHandler) HandleSaveReportedValues(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload reportedValuesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.FinancialYear == "" {
		utils.SendJSONError(w, "financial_year is required", http.StatusBadRequest)
		return
	}

	if err := h.gainsService.SaveReportedValues(userID, payload.FinancialYear, payload.Values); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error saving reported values: %v", err), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "reported values saved"}, http.StatusOK)
}

type fmvPricePayload struct {
	ISIN string  `json:"isin"`
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

// HandleSaveFMVPrices loads cutoff-date NAVs used by the grandfathering
// step-up.
func (h *GainsHandler) HandleSaveFMVPrices(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payload []fmvPricePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body: expected a JSON array of FMV prices", http.StatusBadRequest)
		return
	}

	prices := make([]models.FMVPrice, 0, len(payload))
	for i, p := range payload {
		date := utils.ParseDate(p.Date)
		if date.IsZero() {
			utils.SendJSONError(w, fmt.Sprintf("price %d: invalid date %q", i, p.Date), http.StatusBadRequest)
			return
		}
		prices = append(prices, models.FMVPrice{ISIN: p.ISIN, Date: date, NAV: p.NAV})
	}

	saved, err := h.gainsService.SaveFMVPrices(prices)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error saving FMV prices: %v", err), http.StatusBadRequest)
		return
	}

	h.gainsService.InvalidateUserCache(userID)
	utils.SendJSON(w, map[string]interface{}{"saved": saved}, http.StatusOK)
}
