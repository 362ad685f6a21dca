package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/api/response"
	"github.com/veriwork/veriwork/internal/api/validation"
	"github.com/veriwork/veriwork/internal/approval"
	"github.com/veriwork/veriwork/internal/rbac"
	"github.com/veriwork/veriwork/internal/workentry"
)

type createWorkEntryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	WorkType    string `json:"workType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	TeamID      string `json:"teamId"`
	Draft       bool   `json:"draft"`
}

type updateWorkEntryRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	WorkType    *string `json:"workType"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	TeamID      *string `json:"teamId"`
}

type reviewRequest struct {
	Comments string `json:"comments"`
	Rating   *int   `json:"rating"`
}

type annotationRequest struct {
	Note string `json:"note"`
}

type annotationResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Note      string `json:"note"`
	CreatedAt string `json:"createdAt"`
}

type workEntryResponse struct {
	ID               string               `json:"id"`
	CompanyID        string               `json:"companyId"`
	EmployeeID       string               `json:"employeeId"`
	TeamID           *string              `json:"teamId"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	WorkType         string               `json:"workType"`
	StartDate        string               `json:"startDate"`
	EndDate          *string              `json:"endDate"`
	ApprovalStatus   string               `json:"approvalStatus"`
	IsImmutable      bool                 `json:"isImmutable"`
	ApprovedBy       *string              `json:"approvedBy"`
	ApprovedByType   *string              `json:"approvedByType"`
	ApprovedAt       *string              `json:"approvedAt"`
	ApprovalComments *string              `json:"approvalComments"`
	CompanyRating    *int16               `json:"companyRating"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
	Annotations      []annotationResponse `json:"annotations,omitempty"`
}

const timestampLayout = "2006-01-02T15:04:05Z"

func toWorkEntryResponse(e *workentry.WorkEntry) workEntryResponse {
	resp := workEntryResponse{
		ID:               e.ID.String(),
		CompanyID:        e.CompanyID.String(),
		EmployeeID:       e.EmployeeID.String(),
		Title:            e.Title,
		Description:      e.Description,
		WorkType:         e.WorkType,
		StartDate:        e.StartDate.UTC().Format(validation.DateLayout),
		ApprovalStatus:   string(e.ApprovalStatus),
		IsImmutable:      e.IsImmutable,
		ApprovalComments: e.ApprovalComments,
		CompanyRating:    e.CompanyRating,
		CreatedAt:        e.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:        e.UpdatedAt.UTC().Format(timestampLayout),
	}
	if e.TeamID != nil {
		s := e.TeamID.String()
		resp.TeamID = &s
	}
	if e.EndDate != nil {
		s := e.EndDate.UTC().Format(validation.DateLayout)
		resp.EndDate = &s
	}
	if e.ApprovedBy != nil {
		s := e.ApprovedBy.String()
		resp.ApprovedBy = &s
	}
	if e.ApprovedByType != nil {
		s := string(*e.ApprovedByType)
		resp.ApprovedByType = &s
	}
	if e.ApprovedAt != nil {
		s := e.ApprovedAt.UTC().Format(timestampLayout)
		resp.ApprovedAt = &s
	}
	return resp
}

func toAnnotationResponse(a workentry.Annotation) annotationResponse {
	return annotationResponse{
		ID:        a.ID.String(),
		AuthorID:  a.AuthorID.String(),
		Note:      a.Note,
		CreatedAt: a.CreatedAt.UTC().Format(timestampLayout),
	}
}

// WorkEntryHandler handles work entry endpoints. CRUD-style edits go
// through the store; every status change goes through the approval engine.
type WorkEntryHandler struct {
	entries workentry.Repository
	engine  *approval.Engine
}

// NewWorkEntryHandler creates a new WorkEntryHandler.
func NewWorkEntryHandler(entries workentry.Repository, engine *approval.Engine) *WorkEntryHandler {
	return &WorkEntryHandler{entries: entries, engine: engine}
}

// Create handles POST /work-entries.
func (h *WorkEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createWorkEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateWorkEntryRequest(validation.CreateWorkEntryRequest{
		Title:       req.Title,
		Description: req.Description,
		WorkType:    req.WorkType,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TeamID:      req.TeamID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	startDate, _ := time.Parse(validation.DateLayout, req.StartDate)

	entry := &workentry.WorkEntry{
		CompanyID:   identity.CompanyID,
		EmployeeID:  identity.AccountID,
		Title:       req.Title,
		Description: req.Description,
		WorkType:    req.WorkType,
		StartDate:   startDate,
	}
	if req.Draft {
		entry.ApprovalStatus = workentry.StatusDraft
	}
	if req.EndDate != "" {
		endDate, _ := time.Parse(validation.DateLayout, req.EndDate)
		entry.EndDate = &endDate
	}
	if req.TeamID != "" {
		teamID, _ := uuid.Parse(req.TeamID)
		entry.TeamID = &teamID
	}

	if err := h.entries.Create(r.Context(), entry); err != nil {
		if errors.Is(err, workentry.ErrInvalidReference) {
			response.Err(w, http.StatusBadRequest, "INVALID_REFERENCE", "Referenced team does not exist", requestID)
			return
		}
		slog.Error("failed to create work entry", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create work entry", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toWorkEntryResponse(entry), requestID)
}

// Get handles GET /work-entries/{id}.
func (h *WorkEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	// Entries of other companies are indistinguishable from absent ones.
	if entry.CompanyID != identity.CompanyID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Work entry not found", requestID)
		return
	}
	if identity.Role == rbac.RoleEmployee && entry.EmployeeID != identity.AccountID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You may only view your own work entries", requestID)
		return
	}

	annotations, err := h.entries.Annotations(r.Context(), id)
	if err != nil {
		slog.Error("failed to list annotations", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load work entry", requestID)
		return
	}

	resp := toWorkEntryResponse(entry)
	for _, a := range annotations {
		resp.Annotations = append(resp.Annotations, toAnnotationResponse(a))
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// Update handles PATCH /work-entries/{id}. Only the owning employee may
// edit, and only while the entry is not immutable.
func (h *WorkEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateWorkEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fields, fieldErrors := buildUpdateFields(req)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}
	if entry.CompanyID != identity.CompanyID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Work entry not found", requestID)
		return
	}
	if entry.EmployeeID != identity.AccountID {
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only the owning employee may edit a work entry", requestID)
		return
	}

	updated, err := h.entries.Update(r.Context(), id, fields)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(updated), requestID)
}

// Submit handles POST /work-entries/{id}/submit.
func (h *WorkEntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	entry, err := h.engine.Submit(r.Context(), *identity, id)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(entry), requestID)
}

// Resubmit handles POST /work-entries/{id}/resubmit.
func (h *WorkEntryHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	entry, err := h.engine.Resubmit(r.Context(), *identity, id)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(entry), requestID)
}

// Approve handles POST /work-entries/{id}/approve.
func (h *WorkEntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	req, ok := decodeReviewRequest(w, r, false, requestID)
	if !ok {
		return
	}

	var comments *string
	if req.Comments != "" {
		comments = &req.Comments
	}
	var rating *int16
	if req.Rating != nil {
		v := int16(*req.Rating)
		rating = &v
	}

	entry, err := h.engine.Approve(r.Context(), *identity, id, comments, rating)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(entry), requestID)
}

// RequestChanges handles POST /work-entries/{id}/request-changes.
func (h *WorkEntryHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	req, ok := decodeReviewRequest(w, r, true, requestID)
	if !ok {
		return
	}

	entry, err := h.engine.RequestChanges(r.Context(), *identity, id, req.Comments)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(entry), requestID)
}

// Reject handles POST /work-entries/{id}/reject.
func (h *WorkEntryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	req, ok := decodeReviewRequest(w, r, true, requestID)
	if !ok {
		return
	}

	entry, err := h.engine.Reject(r.Context(), *identity, id, req.Comments)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusOK, toWorkEntryResponse(entry), requestID)
}

// Annotate handles POST /work-entries/{id}/annotations. Annotations are the
// one write that works on immutable entries.
func (h *WorkEntryHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, ok := parseEntryID(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req annotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAnnotationRequest(validation.AnnotationRequest{Note: req.Note})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	entry, err := h.entries.GetByID(r.Context(), id)
	if err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}
	if entry.CompanyID != identity.CompanyID {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Work entry not found", requestID)
		return
	}

	annotation := &workentry.Annotation{
		EntryID:  id,
		AuthorID: identity.AccountID,
		Note:     req.Note,
	}
	if err := h.entries.AddAnnotation(r.Context(), annotation); err != nil {
		respondWorkEntryError(w, err, requestID)
		return
	}

	response.Success(w, http.StatusCreated, toAnnotationResponse(*annotation), requestID)
}

func parseEntryID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}

func decodeReviewRequest(w http.ResponseWriter, r *http.Request, commentsNeeded bool, requestID string) (reviewRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return reviewRequest{}, false
	}

	fieldErrors := validation.ValidateReviewRequest(validation.ReviewRequest{
		Comments:       req.Comments,
		Rating:         req.Rating,
		CommentsNeeded: commentsNeeded,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return reviewRequest{}, false
	}

	return req, true
}

func buildUpdateFields(req updateWorkEntryRequest) (workentry.UpdateFields, []validation.FieldError) {
	var fields workentry.UpdateFields
	var errs []validation.FieldError

	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > 255 {
			errs = append(errs, validation.FieldError{Field: "title", Message: "title must be 1-255 characters"})
		} else {
			fields.Title = req.Title
		}
	}
	if req.Description != nil {
		fields.Description = req.Description
	}
	if req.WorkType != nil {
		fields.WorkType = req.WorkType
	}
	if req.StartDate != nil {
		start, err := time.Parse(validation.DateLayout, *req.StartDate)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "startDate", Message: "startDate must be a date in YYYY-MM-DD format"})
		} else {
			fields.StartDate = &start
		}
	}
	if req.EndDate != nil {
		end, err := time.Parse(validation.DateLayout, *req.EndDate)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "endDate", Message: "endDate must be a date in YYYY-MM-DD format"})
		} else {
			fields.EndDate = &end
		}
	}
	if req.TeamID != nil {
		teamID, err := uuid.Parse(*req.TeamID)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
		} else {
			fields.TeamID = &teamID
		}
	}

	return fields, errs
}

// respondWorkEntryError maps store and engine errors to the API taxonomy.
// Every rejected transition reports which precondition failed.
func respondWorkEntryError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, workentry.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Work entry not found", requestID)
	case errors.Is(err, workentry.ErrAlreadyImmutable):
		response.Err(w, http.StatusConflict, "ALREADY_IMMUTABLE", "Work entry is already approved and immutable", requestID)
	case errors.Is(err, workentry.ErrInvalidState):
		response.Err(w, http.StatusConflict, "INVALID_STATE", err.Error(), requestID)
	case errors.Is(err, workentry.ErrImmutable):
		response.Err(w, http.StatusConflict, "IMMUTABLE_ENTRY", "Work entry is immutable and can no longer be edited", requestID)
	case errors.Is(err, workentry.ErrInvalidReference):
		response.Err(w, http.StatusBadRequest, "INVALID_REFERENCE", "Referenced team does not exist", requestID)
	case errors.Is(err, approval.ErrUnauthorized):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "You are not authorized to act on this work entry", requestID)
	case errors.Is(err, approval.ErrMissingComments):
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Comments are required", requestID)
	case errors.Is(err, approval.ErrInvalidRating):
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be between 0 and 5", requestID)
	default:
		slog.Error("work entry operation failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Work entry operation failed", requestID)
	}
}
