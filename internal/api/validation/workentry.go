package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateWorkEntryRequest mirrors the fields needed for create validation.
type CreateWorkEntryRequest struct {
	Title       string
	Description string
	WorkType    string
	StartDate   string
	EndDate     string
	TeamID      string
}

// ValidateCreateWorkEntryRequest validates the fields of a create work
// entry request.
func ValidateCreateWorkEntryRequest(req CreateWorkEntryRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 255 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
	}

	if len(req.Description) > 4000 {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 4000 characters"})
	}

	var start time.Time
	if req.StartDate == "" {
		errs = append(errs, FieldError{Field: "startDate", Message: "startDate is required"})
	} else {
		var err error
		start, err = time.Parse(DateLayout, req.StartDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "startDate", Message: "startDate must be a date in YYYY-MM-DD format"})
		}
	}

	if req.EndDate != "" {
		end, err := time.Parse(DateLayout, req.EndDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "endDate", Message: "endDate must be a date in YYYY-MM-DD format"})
		} else if !start.IsZero() && end.Before(start) {
			errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
		}
	}

	if req.TeamID != "" {
		if _, err := uuid.Parse(req.TeamID); err != nil {
			errs = append(errs, FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
		}
	}

	return errs
}

// ReviewRequest mirrors the fields shared by the approve, request-changes,
// and reject endpoints.
type ReviewRequest struct {
	Comments       string
	Rating         *int
	CommentsNeeded bool
}

// ValidateReviewRequest validates a review transition request.
func ValidateReviewRequest(req ReviewRequest) []FieldError {
	var errs []FieldError

	if req.CommentsNeeded && strings.TrimSpace(req.Comments) == "" {
		errs = append(errs, FieldError{Field: "comments", Message: "comments are required"})
	}
	if len(req.Comments) > 2000 {
		errs = append(errs, FieldError{Field: "comments", Message: "comments must be at most 2000 characters"})
	}

	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		errs = append(errs, FieldError{Field: "rating", Message: "rating must be between 0 and 5"})
	}

	return errs
}

// AnnotationRequest mirrors the fields of an annotation request.
type AnnotationRequest struct {
	Note string
}

// ValidateAnnotationRequest validates an annotation request.
func ValidateAnnotationRequest(req AnnotationRequest) []FieldError {
	var errs []FieldError

	note := strings.TrimSpace(req.Note)
	if note == "" {
		errs = append(errs, FieldError{Field: "note", Message: "note is required"})
	} else if len(note) > 2000 {
		errs = append(errs, FieldError{Field: "note", Message: "note must be at most 2000 characters"})
	}

	return errs
}
