// Package handler exposes the account service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"searchuser-api/internal/account/service"
	auditdomain "searchuser-api/internal/audit/domain"
	"searchuser-api/internal/server/middleware"
	"searchuser-api/internal/user/domain"
)

// credentialFailureMessage is returned for both unknown-email and
// wrong-password sign-ins so callers cannot tell which field was wrong.
const credentialFailureMessage = "Invalid user and / or password"

// AccountService is the service surface the handler needs.
type AccountService interface {
	SignIn(ctx context.Context, email, password string) (*service.SignedInUser, error)
	SignUp(ctx context.Context, p service.SignupParams) (*service.SignedInUser, error)
	FindUser(ctx context.Context, id, subjectID string) (*domain.User, error)
}

// Metrics counts account outcomes; implementations must be non-blocking.
type Metrics interface {
	RecordSigninSuccess()
	RecordSigninFailure()
	RecordSignup()
}

// AuditReader lists recorded account events for a user, newest first.
type AuditReader interface {
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// Handler serves the account endpoints.
type Handler struct {
	service AccountService
	metrics Metrics
	audit   AuditReader
}

// NewHandler returns a Handler. metrics and audit may be nil; a nil audit
// disables the history endpoint.
func NewHandler(service AccountService, metrics Metrics, audit AuditReader) *Handler {
	return &Handler{service: service, metrics: metrics, audit: audit}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type telephoneRequest struct {
	Number string `json:"number"`
}

type signupRequest struct {
	Name       string             `json:"name"`
	Email      string             `json:"email"`
	Password   string             `json:"password"`
	Telephones []telephoneRequest `json:"telephones"`
}

// signedInUserResponse is the public projection of a signed-in account.
// The credential hash and email are never echoed back.
type signedInUserResponse struct {
	ID            string     `json:"id"`
	CreatedOn     time.Time  `json:"createdOn"`
	LastUpdatedOn time.Time  `json:"lastUpdatedOn"`
	LastLoginOn   *time.Time `json:"lastLoginOn"`
	Token         string     `json:"token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Signin handles POST /api/signin: verify credentials, stamp last login,
// and return the signed-in view with a fresh token.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "malformed request body"})
		return
	}
	slog.Debug("signin", slog.String("email", req.Email))

	signed, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.recordSigninFailure()
			writeJSON(w, http.StatusNotFound, messageResponse{Message: credentialFailureMessage})
		case errors.Is(err, service.ErrInvalidCredentials):
			h.recordSigninFailure()
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: credentialFailureMessage})
		default:
			internalError(w, err)
		}
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSigninSuccess()
	}
	writeJSON(w, http.StatusAccepted, toSignedInResponse(signed))
}

// Signup handles POST /api/signup: create the account and sign it in.
// Constraint violations come back as 400 with the full error list.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "malformed request body"})
		return
	}
	slog.Debug("signup", slog.String("email", req.Email))

	params := service.SignupParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	for _, tel := range req.Telephones {
		params.Telephones = append(params.Telephones, tel.Number)
	}

	signed, err := h.service.SignUp(r.Context(), params)
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, verrs)
			return
		}
		internalError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordSignup()
	}
	writeJSON(w, http.StatusCreated, toSignedInResponse(signed))
}

// FindUser handles GET /api/finduser/{id}. The id must equal the validated
// token subject, the record must exist, and the session window must still be
// open. Lookup is read-only: no token is reissued.
func (h *Handler) FindUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	slog.Debug("finduser", slog.String("id", id))

	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.service.FindUser(r.Context(), id, subject)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectMismatch):
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		case errors.Is(err, service.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, service.ErrSessionExpired):
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid Session"})
		default:
			internalError(w, err)
		}
		return
	}

	resp := signedInUserResponse{
		ID:            user.ID,
		CreatedOn:     user.CreatedAt,
		LastUpdatedOn: user.UpdatedAt,
		LastLoginOn:   user.LastLoginAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

// historyEntryResponse is one recorded account event.
type historyEntryResponse struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	CreatedOn time.Time `json:"createdOn"`
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History handles GET /api/finduser/{id}/history: recent account events for
// the user, newest first. Gated exactly like FindUser; the id must be the
// token subject with a still-valid session.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	subject, ok := middleware.GetSubject(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		return
	}

	if _, err := h.service.FindUser(r.Context(), id, subject); err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectMismatch):
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Unauthorized"})
		case errors.Is(err, service.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, service.ErrSessionExpired):
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Invalid Session"})
		default:
			internalError(w, err)
		}
		return
	}

	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, err := h.audit.ListByUser(r.Context(), id, int32(limit), int32(offset))
	if err != nil {
		internalError(w, err)
		return
	}

	resp := make([]historyEntryResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, historyEntryResponse{
			Action:    e.Action,
			Resource:  e.Resource,
			IP:        e.IP,
			CreatedOn: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (h *Handler) recordSigninFailure() {
	if h.metrics != nil {
		h.metrics.RecordSigninFailure()
	}
}

func toSignedInResponse(signed *service.SignedInUser) signedInUserResponse {
	return signedInUserResponse{
		ID:            signed.User.ID,
		CreatedOn:     signed.User.CreatedAt,
		LastUpdatedOn: signed.User.UpdatedAt,
		LastLoginOn:   signed.User.LastLoginAt,
		Token:         signed.Token,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write response", slog.String("error", err.Error()))
	}
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("account handler", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
}
