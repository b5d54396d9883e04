package httpapi

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"

	"github.com/unitedhq/partner-api/internal/audit"
	"github.com/unitedhq/partner-api/internal/auth"
	"github.com/unitedhq/partner-api/internal/identity"
)

type loginRequest struct {
	Usr string `json:"usr"`
	Pwd string `json:"pwd"`
}

type userDetails struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender"`
	BirthDate    string `json:"birth_date"`
	Email        string `json:"email"`
	EmployeeName string `json:"employee_name"`
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	PartnerType  string `json:"partner_type"`
	Image        string `json:"image"`
	Enabled      bool   `json:"enabled"`
}

type loginResponse struct {
	UserDetails  userDetails `json:"user_details"`
	Token        string      `json:"token"`
	SessionToken string      `json:"session_token"`
}

const (
	loginFailedMessage = "Invalid Details & Master User Not Login"
	authErrorType      = "authentication_error"
)

// handleLogin authenticates the principal, walks the partner identity chain,
// rotates the API credential pair and signs a session token. Any chain
// failure rejects the login with the gate's message; credentials are only
// written after the chain succeeds.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.respond(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondTyped(w, r, http.StatusUnprocessableEntity, loginFailedMessage, authErrorType, nil)
		return
	}

	account, err := a.auth.Authenticate(r.Context(), req.Usr, req.Pwd)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{"email": req.Usr})
			a.respondTyped(w, r, http.StatusUnprocessableEntity, loginFailedMessage, authErrorType, nil)
			return
		}
		a.respond(w, r, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	res, err := a.resolver.Resolve(r.Context(), account.ID)
	if err != nil {
		var resErr *identity.ResolutionError
		if errors.As(err, &resErr) {
			_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{
				"email":  account.Email,
				"reason": string(resErr.Code),
			})
			a.respondResolutionError(w, r, http.StatusUnprocessableEntity, resErr)
			return
		}
		a.respond(w, r, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	creds, err := a.auth.IssueCredentials(r.Context(), account.ID)
	if err != nil {
		a.respond(w, r, http.StatusInternalServerError, "Failed to generate API keys.", nil)
		return
	}

	session, _, err := a.auth.IssueSession(account)
	if err != nil {
		a.respond(w, r, http.StatusInternalServerError, "Failed to generate API keys.", nil)
		return
	}

	ctx := auth.ContextWithPrincipal(r.Context(), account.ID)
	_ = audit.LogEvent(ctx, "auth.login", map[string]any{
		"email":   account.Email,
		"partner": res.Partner.ID,
	})
	_ = audit.LogEvent(ctx, "auth.credentials.issued", map[string]any{
		"api_key": creds.Key,
	})

	a.respond(w, r, http.StatusOK, "Login Successful", loginResponse{
		UserDetails: userDetails{
			FirstName:    html.EscapeString(res.Employee.FirstName),
			LastName:     html.EscapeString(res.Employee.LastName),
			Gender:       html.EscapeString(res.Employee.Gender),
			BirthDate:    res.Employee.BirthDate,
			Email:        res.Principal.Email,
			EmployeeName: html.EscapeString(res.Employee.FullName),
			Designation:  html.EscapeString(res.Employee.Designation),
			Department:   html.EscapeString(res.Employee.Department),
			PartnerType:  html.EscapeString(res.Partner.PartnerType),
			Image:        res.Principal.Image,
			Enabled:      res.Principal.Enabled,
		},
		Token:        creds.Token(),
		SessionToken: session,
	})
}
