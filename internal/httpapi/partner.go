package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/unitedhq/partner-api/internal/audit"
	"github.com/unitedhq/partner-api/internal/auth"
	"github.com/unitedhq/partner-api/internal/identity"
	"github.com/unitedhq/partner-api/internal/ledger"
)

// flexInt accepts a JSON number or a numeric string. Anything else leaves the
// value unset; bad pagination input never fails a request.
type flexInt struct {
	value int
	ok    bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	f.value = n
	f.ok = true
	return nil
}

type transactionsRequest struct {
	FromDate string  `json:"from_date"`
	ToDate   string  `json:"to_date"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Page     flexInt `json:"page"`
	Limit    flexInt `json:"limit"`
}

type transactionsResponse struct {
	SalesPartner string               `json:"sales_partner"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// resolvePartner walks the identity chain for the authenticated principal
// and writes the failure envelope itself when the chain breaks.
func (a *API) resolvePartner(w http.ResponseWriter, r *http.Request, failMessage string) (identity.Resolution, bool) {
	principalID, ok := auth.PrincipalIDFromContext(r.Context())
	if !ok {
		a.respond(w, r, http.StatusUnauthorized, "Invalid or missing credentials", nil)
		return identity.Resolution{}, false
	}

	res, err := a.resolver.Resolve(r.Context(), principalID)
	if err != nil {
		var resErr *identity.ResolutionError
		if errors.As(err, &resErr) {
			a.respondResolutionError(w, r, http.StatusBadRequest, resErr)
			return identity.Resolution{}, false
		}
		a.respond(w, r, http.StatusInternalServerError, failMessage, nil)
		return identity.Resolution{}, false
	}
	return res, true
}

// handleDashboard returns the partner's stored point balance and the most
// recent ledger activity. The balance is read as stored, never recomputed
// from entries.
func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.respond(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	res, ok := a.resolvePartner(w, r, "Failed to fetch user dashboard data")
	if !ok {
		return
	}

	summary, err := a.engine.Summary(r.Context(), res.Partner.ID)
	if err != nil {
		a.respond(w, r, http.StatusInternalServerError, "Failed to fetch user dashboard data", nil)
		return
	}

	_ = audit.LogEvent(r.Context(), "report.dashboard", map[string]any{"partner": res.Partner.ID})
	a.respond(w, r, http.StatusOK, "Dashboard Data Fetched Successfully", summary)
}

// handleTransactions returns a filtered, paginated window over the partner's
// ledger along with the filtered total in X-Total-Count.
func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.respond(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req transactionsRequest
	if r.Body != nil {
		// malformed bodies fall back to an unfiltered first page
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	res, ok := a.resolvePartner(w, r, "Failed to fetch transaction data")
	if !ok {
		return
	}

	page := ledger.Page{}
	if req.Page.ok {
		page.Number = req.Page.value
	}
	if req.Limit.ok {
		page.Limit = req.Limit.value
	}

	txs, total, err := a.engine.Query(r.Context(), res.Partner.ID, ledger.Filter{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Type:     req.Type,
		Search:   req.Name,
	}, page)
	if err != nil {
		a.respond(w, r, http.StatusInternalServerError, "Failed to fetch transaction data", nil)
		return
	}

	_ = audit.LogEvent(r.Context(), "report.transactions", map[string]any{
		"partner": res.Partner.ID,
		"total":   total,
	})
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	a.respond(w, r, http.StatusOK, "Transaction Data Fetched Successfully", transactionsResponse{
		SalesPartner: res.Partner.ID,
		Transactions: txs,
	})
}
