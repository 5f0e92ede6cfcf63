package workflow

import "fmt"

// Stable error keys surfaced to callers. Exhaustive for the known failure
// modes; anything else maps to KeyAutomationFailed.
const (
	KeyS3NotFound         = "s3_not_found"
	KeyGrossNotFound      = "gross_not_found"
	KeyGrossInvalid       = "gross_invalid"
	KeyGrossMismatch      = "gross_mismatch"
	KeyCheckFailed        = "check_failed"
	KeyRecordExists       = "record_exists"
	KeyPostButtonDisabled = "post_button_disabled"
	KeyAutomationFailed   = "automation_failed"
)

// Error is a classified run failure: a stable key plus a human message.
type Error struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Message)
}

func classified(key, format string, args ...any) *Error {
	return &Error{Key: key, Message: fmt.Sprintf(format, args...)}
}
