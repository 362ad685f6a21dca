package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/api/response"
	"github.com/veriwork/veriwork/internal/api/validation"
	"github.com/veriwork/veriwork/internal/auth"
	"github.com/veriwork/veriwork/internal/rbac"
)

type createAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type accountResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	// ApiKey is the raw key, returned exactly once at creation.
	ApiKey string `json:"apiKey"`
}

// AccountHandler handles account provisioning endpoints.
type AccountHandler struct {
	svc *auth.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *auth.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Create handles POST /accounts. The caller's company scopes the new
// account; only employee and manager accounts can be created here.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateAccountRequest(validation.CreateAccountRequest{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	role, _ := rbac.ParseRole(req.Role)
	account := &auth.Account{
		CompanyID: identity.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      role,
	}

	rawKey, err := h.svc.CreateAccount(r.Context(), account)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", requestID)
			return
		}
		slog.Error("failed to create account", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", requestID)
		return
	}

	response.Success(w, http.StatusCreated, accountResponse{
		ID:        account.ID.String(),
		CompanyID: account.CompanyID.String(),
		Name:      account.Name,
		Email:     account.Email,
		Role:      string(account.Role),
		CreatedAt: account.CreatedAt.UTC().Format(timestampLayout),
		ApiKey:    rawKey,
	}, requestID)
}
