package validation

import (
	"strings"

	"github.com/veriwork/veriwork/internal/rbac"
)

// CreateAccountRequest mirrors the fields needed for account validation.
type CreateAccountRequest struct {
	Name  string
	Email string
	Role  string
}

// ValidateCreateAccountRequest validates a create account request. Only
// employee and manager accounts can be created through the API; admin
// accounts come from bootstrap.
func ValidateCreateAccountRequest(req CreateAccountRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !strings.Contains(email, "@") || len(email) > 255 {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else {
		role, err := rbac.ParseRole(req.Role)
		if err != nil || (role != rbac.RoleEmployee && role != rbac.RoleManager) {
			errs = append(errs, FieldError{Field: "role", Message: "role must be \"EMPLOYEE\" or \"MANAGER\""})
		}
	}

	return errs
}
