package validation

import (
	"strings"

	"github.com/google/uuid"
)

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	Name        string
	Description string
	ManagerID   string
}

// ValidateCreateTeamRequest validates the fields of a create team request.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if len(req.Description) > 1000 {
		errs = append(errs, FieldError{Field: "description", Message: "description must be at most 1000 characters"})
	}

	if req.ManagerID != "" {
		if _, err := uuid.Parse(req.ManagerID); err != nil {
			errs = append(errs, FieldError{Field: "managerId", Message: "managerId must be a valid UUID"})
		}
	}

	return errs
}

// AssignEmployeeRequest mirrors the fields needed for assignment validation.
type AssignEmployeeRequest struct {
	EmployeeID string
}

// ValidateAssignEmployeeRequest validates an assign employee request.
func ValidateAssignEmployeeRequest(req AssignEmployeeRequest) []FieldError {
	var errs []FieldError

	if req.EmployeeID == "" {
		errs = append(errs, FieldError{Field: "employeeId", Message: "employeeId is required"})
	} else if _, err := uuid.Parse(req.EmployeeID); err != nil {
		errs = append(errs, FieldError{Field: "employeeId", Message: "employeeId must be a valid UUID"})
	}

	return errs
}
