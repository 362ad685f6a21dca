package validation

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
