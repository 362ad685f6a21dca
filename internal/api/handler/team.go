package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/api/response"
	"github.com/veriwork/veriwork/internal/api/validation"
	"github.com/veriwork/veriwork/internal/team"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"managerId"`
}

type assignEmployeeRequest struct {
	EmployeeID string `json:"employeeId"`
}

type teamResponse struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"companyId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ManagerID   *string `json:"managerId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type managerTeamResponse struct {
	teamResponse
	EmployeeCount int `json:"employeeCount"`
	PendingCount  int `json:"pendingCount"`
}

type companyTeamResponse struct {
	teamResponse
	ManagerName *string `json:"managerName"`
}

type assignmentResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	TeamID     string `json:"teamId"`
	AssignedBy string `json:"assignedBy"`
	IsActive   bool   `json:"isActive"`
	CreatedAt  string `json:"createdAt"`
}

func toTeamResponse(t *team.Team) teamResponse {
	resp := teamResponse{
		ID:          t.ID.String(),
		CompanyID:   t.CompanyID.String(),
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timestampLayout),
	}
	if t.ManagerID != nil {
		s := t.ManagerID.String()
		resp.ManagerID = &s
	}
	return resp
}

// TeamHandler handles team and assignment endpoints.
type TeamHandler struct {
	repo team.Repository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository) *TeamHandler {
	return &TeamHandler{repo: repo}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamRequest(validation.CreateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t := &team.Team{
		CompanyID:   identity.CompanyID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.ManagerID != "" {
		managerID, _ := uuid.Parse(req.ManagerID)
		t.ManagerID = &managerID
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		if errors.Is(err, team.ErrDuplicateTeamName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("A team named %q already exists", req.Name), requestID)
			return
		}
		if errors.Is(err, team.ErrInvalidReference) {
			response.Err(w, http.StatusBadRequest, "INVALID_REFERENCE", "Referenced manager does not exist", requestID)
			return
		}
		slog.Error("failed to create team", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// Assign handles POST /teams/{id}/assignments.
func (h *TeamHandler) Assign(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req assignEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAssignEmployeeRequest(validation.AssignEmployeeRequest{EmployeeID: req.EmployeeID})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}
	employeeID, _ := uuid.Parse(req.EmployeeID)

	// Assignments stay within the caller's company.
	t, err := h.repo.GetByID(r.Context(), teamID)
	if err != nil || t.CompanyID != identity.CompanyID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		return
	}

	assignment := &team.Assignment{
		EmployeeID: employeeID,
		TeamID:     teamID,
		CompanyID:  identity.CompanyID,
		AssignedBy: identity.AccountID,
	}

	if err := h.repo.AssignEmployee(r.Context(), assignment); err != nil {
		if errors.Is(err, team.ErrDuplicateAssignment) {
			response.Err(w, http.StatusConflict, "DUPLICATE_ASSIGNMENT", "Employee is already actively assigned to this team", requestID)
			return
		}
		if errors.Is(err, team.ErrInvalidReference) {
			response.Err(w, http.StatusBadRequest, "INVALID_REFERENCE", "Referenced employee does not exist", requestID)
			return
		}
		slog.Error("failed to assign employee", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to assign employee", requestID)
		return
	}

	response.Success(w, http.StatusCreated, assignmentResponse{
		ID:         assignment.ID.String(),
		EmployeeID: assignment.EmployeeID.String(),
		TeamID:     assignment.TeamID.String(),
		AssignedBy: assignment.AssignedBy.String(),
		IsActive:   assignment.IsActive,
		CreatedAt:  assignment.CreatedAt.UTC().Format(timestampLayout),
	}, requestID)
}

// Unassign handles DELETE /teams/{id}/assignments/{employeeId}. The
// assignment record is soft-deleted, not removed.
func (h *TeamHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}
	employeeID, err := uuid.Parse(chi.URLParam(r, "employeeId"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "employeeId must be a valid UUID", requestID)
		return
	}

	t, err := h.repo.GetByID(r.Context(), teamID)
	if err != nil || t.CompanyID != identity.CompanyID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		return
	}

	if err := h.repo.DeactivateAssignment(r.Context(), employeeID, teamID); err != nil {
		if errors.Is(err, team.ErrAssignmentNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Active assignment not found", requestID)
			return
		}
		slog.Error("failed to deactivate assignment", "error", err, "teamId", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove assignment", requestID)
		return
	}

	response.NoContent(w)
}

// ListCompany handles GET /teams.
func (h *TeamHandler) ListCompany(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	teams, err := h.repo.ListForCompany(r.Context(), identity.CompanyID)
	if err != nil {
		slog.Error("failed to list company teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	items := make([]companyTeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, companyTeamResponse{
			teamResponse: toTeamResponse(&teams[i].Team),
			ManagerName:  teams[i].ManagerName,
		})
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// ListMine handles GET /my/teams.
func (h *TeamHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	teams, err := h.repo.ListForManager(r.Context(), identity.AccountID)
	if err != nil {
		slog.Error("failed to list manager teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	items := make([]managerTeamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, managerTeamResponse{
			teamResponse:  toTeamResponse(&teams[i].Team),
			EmployeeCount: teams[i].EmployeeCount,
			PendingCount:  teams[i].PendingCount,
		})
	}

	response.Success(w, http.StatusOK, items, requestID)
}
