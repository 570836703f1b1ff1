package record

import (
	"errors"
	"strings"
)

// ErrInvalid matches every ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid record")

// Violation is one failed constraint. Field uses the JSON path of the
// offending value, e.g. "ratings.taste.stars" or "ingredients[1].name".
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every constraint a document violates.
type ValidationError struct {
	Violations []Violation
}

// Error joins every violation into one line.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Field == "" {
			parts[i] = v.Message
			continue
		}
		parts[i] = v.Field + ": " + v.Message
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e *ValidationError) add(field, msg string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
