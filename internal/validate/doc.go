// Package validate provides input validation for identifiers that cross the
// boundary between user input and the on-disk record store.
//
// # Design Philosophy
//
// Record ids become directory names (<prefix><id>), so validation rejects
// anything that could escape the storage root or collide with the layout:
// separators, traversal, null bytes, reserved names. Everything else is
// allowed; ids are usually UUIDs but older stores may hold shorter ids.
//
// # Error Handling
//
// All validation errors wrap one of the sentinel errors defined in errors.go.
// Use errors.Is() for type-safe error checking:
//
//	if errors.Is(err, validate.ErrInvalidID) {
//	    // handle invalid id
//	}
package validate
