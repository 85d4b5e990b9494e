package lesson

import "errors"

// ValidationError is a user-facing rejection of form input. The save is
// aborted and nothing is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	errEmptyURL     = &ValidationError{Field: "url", Message: "Please enter a PDF URL"}
	errNoVideoLinks = &ValidationError{Field: "links", Message: "Add at least one video link"}
	errEmptySheet   = &ValidationError{Field: "raw", Message: "Paste Google Sheet data first"}
	errNoSheetRows  = &ValidationError{Field: "raw", Message: "Could not parse data. Ensure Tab Separated format."}
	errTooManyLinks = &ValidationError{Field: "links", Message: "A playlist holds at most 10 links"}
	errBadPDFType   = &ValidationError{Field: "type", Message: "Choose a notes or PDF content type"}
)
