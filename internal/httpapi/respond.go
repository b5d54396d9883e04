package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/unitedhq/partner-api/internal/identity"
	"github.com/unitedhq/partner-api/internal/sanitize"
)

// sessionExpiredMessage matches the fixed notice clients key on.
const sessionExpiredMessage = "Session Expired.Please login again."

// envelope is the uniform response shape of every endpoint.
type envelope struct {
	HTTPStatusCode int    `json:"http_status_code"`
	Message        string `json:"message"`
	ErrorType      string `json:"error_type,omitempty"`
	Data           any    `json:"data"`
}

// respond writes the envelope. A session-expiry flag threaded through the
// request context overrides status and message before any handler-specific
// message applies; 500-class messages are markup-stripped before they reach
// the wire.
func (a *API) respond(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	a.respondTyped(w, r, status, message, "", data)
}

func (a *API) respondTyped(w http.ResponseWriter, r *http.Request, status int, message, errorType string, data any) {
	if sessionExpiredFromContext(r.Context()) {
		status = http.StatusForbidden
		message = sessionExpiredMessage
	}
	if status >= http.StatusInternalServerError {
		message = sanitize.Text(message)
	}
	if data == nil {
		data = map[string]any{}
	}
	writeJSON(w, status, envelope{
		HTTPStatusCode: status,
		Message:        message,
		ErrorType:      errorType,
		Data:           data,
	})
}

// respondResolutionError maps a chain-resolution failure to the envelope
// with the given status, carrying the machine-readable code.
func (a *API) respondResolutionError(w http.ResponseWriter, r *http.Request, status int, resErr *identity.ResolutionError) {
	a.respondTyped(w, r, status, resErr.Message, string(resErr.Code), nil)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
