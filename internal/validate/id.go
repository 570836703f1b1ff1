package validate

import (
	"fmt"
	"strings"
)

// MaxIDLength bounds ids so <prefix><id> stays well inside common
// filesystem name limits (255 bytes).
const MaxIDLength = 128

// ID validates a record id.
//
// Validation rules:
//   - Empty ids rejected (would map to the bare prefix directory)
//   - Null bytes rejected
//   - Path separators and ".." rejected (ids are single path components)
//   - Leading dots rejected (hidden files, "." and "..")
//   - Length capped at MaxIDLength bytes
func ID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrIDTooLong, len(id), MaxIDLength)
	}
	if strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: null byte in id", ErrInvalidID)
	}
	if strings.ContainsAny(id, `/\:`) {
		return fmt.Errorf("%w: path separator in %q", ErrInvalidID, id)
	}
	if strings.HasPrefix(id, ".") || strings.Contains(id, "..") {
		return fmt.Errorf("%w: dot sequence in %q", ErrInvalidID, id)
	}
	return nil
}
