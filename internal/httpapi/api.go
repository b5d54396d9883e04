package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/unitedhq/partner-api/internal/auth"
	"github.com/unitedhq/partner-api/internal/identity"
	"github.com/unitedhq/partner-api/internal/ledger"
	"github.com/unitedhq/partner-api/internal/obs"
)

// ReadyProbe reports readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the identity resolver and the ledger query
// engine.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth     *auth.Service
	resolver *identity.Resolver
	engine   *ledger.Engine

	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

// New wires routes for the service.
func New(rp ReadyProbe, version string, authSvc *auth.Service, resolver *identity.Resolver, engine *ledger.Engine) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		auth:         authSvc,
		resolver:     resolver,
		engine:       engine,
		rateBurst:    20,
		ratePerSec:   10,
		maxBodyBytes: 1 << 20,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/partner/dashboard", a.handleDashboard)
	a.mux.HandleFunc("/v1/partner/transactions", a.handleTransactions)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// SetRateLimit overrides the per-IP limiter settings.
func (a *API) SetRateLimit(burst, perSec int) {
	a.rateBurst = burst
	a.ratePerSec = perSec
}

// SetMaxBodyBytes overrides the request body cap.
func (a *API) SetMaxBodyBytes(n int64) {
	if n > 0 {
		a.maxBodyBytes = n
	}
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "partner-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
