package handler

import (
	"log/slog"
	"net/http"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/api/response"
	"github.com/veriwork/veriwork/internal/api/validation"
	"github.com/veriwork/veriwork/internal/workview"
)

type queueItemResponse struct {
	EntryID      string  `json:"entryId"`
	Title        string  `json:"title"`
	WorkType     string  `json:"workType"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate"`
	EmployeeID   string  `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	TeamID       string  `json:"teamId"`
	TeamName     string  `json:"teamName"`
	CreatedAt    string  `json:"createdAt"`
}

type companyItemResponse struct {
	EntryID        string  `json:"entryId"`
	Title          string  `json:"title"`
	ApprovalStatus string  `json:"approvalStatus"`
	IsImmutable    bool    `json:"isImmutable"`
	CompanyRating  *int16  `json:"companyRating"`
	EmployeeID     string  `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	TeamID         *string `json:"teamId"`
	TeamName       *string `json:"teamName"`
	ManagerName    *string `json:"managerName"`
	CreatedAt      string  `json:"createdAt"`
}

// WorkViewHandler serves the role-scoped read views.
type WorkViewHandler struct {
	views workview.Repository
}

// NewWorkViewHandler creates a new WorkViewHandler.
func NewWorkViewHandler(views workview.Repository) *WorkViewHandler {
	return &WorkViewHandler{views: views}
}

// ManagerQueue handles GET /work-queue.
func (h *WorkViewHandler) ManagerQueue(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	items, err := h.views.ManagerQueue(r.Context(), identity.AccountID)
	if err != nil {
		slog.Error("failed to load manager work queue", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load work queue", requestID)
		return
	}

	resp := make([]queueItemResponse, 0, len(items))
	for _, it := range items {
		item := queueItemResponse{
			EntryID:      it.EntryID.String(),
			Title:        it.Title,
			WorkType:     it.WorkType,
			StartDate:    it.StartDate.UTC().Format(validation.DateLayout),
			EmployeeID:   it.EmployeeID.String(),
			EmployeeName: it.EmployeeName,
			TeamID:       it.TeamID.String(),
			TeamName:     it.TeamName,
			CreatedAt:    it.CreatedAt.UTC().Format(timestampLayout),
		}
		if it.EndDate != nil {
			s := it.EndDate.UTC().Format(validation.DateLayout)
			item.EndDate = &s
		}
		resp = append(resp, item)
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// CompanyView handles GET /company/work-entries.
func (h *WorkViewHandler) CompanyView(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	items, err := h.views.CompanyView(r.Context(), identity.CompanyID)
	if err != nil {
		slog.Error("failed to load company work view", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load company view", requestID)
		return
	}

	resp := make([]companyItemResponse, 0, len(items))
	for _, it := range items {
		item := companyItemResponse{
			EntryID:        it.EntryID.String(),
			Title:          it.Title,
			ApprovalStatus: string(it.ApprovalStatus),
			IsImmutable:    it.IsImmutable,
			CompanyRating:  it.CompanyRating,
			EmployeeID:     it.EmployeeID.String(),
			EmployeeName:   it.EmployeeName,
			TeamName:       it.TeamName,
			ManagerName:    it.ManagerName,
			CreatedAt:      it.CreatedAt.UTC().Format(timestampLayout),
		}
		if it.TeamID != nil {
			s := it.TeamID.String()
			item.TeamID = &s
		}
		resp = append(resp, item)
	}

	response.Success(w, http.StatusOK, resp, requestID)
}
