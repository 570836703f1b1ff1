// errors.go defines sentinel errors for validation failures.

package validate

import "errors"

var (
	ErrInvalidID = errors.New("invalid record id")
	ErrIDTooLong = errors.New("record id too long")
)
