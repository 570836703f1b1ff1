package record

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/jpl-au/fermi/internal/validate"
)

var (
	structValidator *validator.Validate
	validatorOnce   sync.Once
)

// getValidator returns the shared validator. Field names in errors are
// the JSON keys.
func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

// Parse decodes and validates raw. On failure the error is a
// *ValidationError listing every violated constraint.
func Parse(raw []byte) (Record, error) {
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		ve := &ValidationError{}
		ve.add("", "malformed JSON: "+err.Error())
		return Record{}, ve
	}
	if err := check(w); err != nil {
		return Record{}, err
	}
	return fromWire(w), nil
}

// TryParse is Parse without the error detail.
func TryParse(raw []byte) (Record, bool) {
	r, err := Parse(raw)
	return r, err == nil
}

// Validate reports whether r would survive a write and re-read.
func Validate(r Record) error {
	w, err := toWire(r)
	if err != nil {
		return err
	}
	return check(w)
}

// Marshal serialises r in the on-disk form, indented with two spaces.
func Marshal(r Record) ([]byte, error) {
	w, err := toWire(r)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

// MarshalJSON encodes r in its on-disk form.
func (r Record) MarshalJSON() ([]byte, error) {
	w, err := toWire(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses and validates a record document.
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// check runs the struct rules and then the variant rules, collecting
// every violation.
func check(w wire) error {
	ve := &ValidationError{}

	if err := getValidator().Struct(w); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			ve.add("", err.Error())
			return ve
		}
		for _, fe := range fieldErrs {
			ve.add(fieldPath(fe), translate(fe))
		}
	}
	if w.ID != "" {
		if err := validate.ID(w.ID); err != nil {
			ve.add("id", err.Error())
		}
	}
	if w.StartDate != "" && w.EndDate != "" && w.EndDate.Before(w.StartDate) {
		ve.add("endDate", "must not be before startDate")
	}

	switch w.State {
	case StateProvisional:
		forbid(ve, w, "completedAt", "ratings", "reason", "failedAt")
	case StateCompleted:
		if w.CompletedAt == nil {
			ve.add("completedAt", "is required when state is completed")
		}
		if w.Ratings == nil {
			ve.add("ratings", "is required when state is completed")
		}
		forbid(ve, w, "reason", "failedAt")
	case StateFailed:
		if w.Reason == nil || strings.TrimSpace(*w.Reason) == "" {
			ve.add("reason", "is required when state is failed")
		}
		forbid(ve, w, "completedAt", "ratings")
	}
	return ve.orNil()
}

// forbid flags variant keys present on a record of another state.
func forbid(ve *ValidationError, w wire, keys ...string) {
	present := map[string]bool{
		"completedAt": w.CompletedAt != nil,
		"ratings":     w.Ratings != nil,
		"reason":      w.Reason != nil,
		"failedAt":    w.FailedAt != nil,
	}
	for _, k := range keys {
		if present[k] {
			ve.add(k, fmt.Sprintf("is not allowed when state is %s", w.State))
		}
	}
}

// fieldPath strips the root struct name from the namespace:
// "wire.ratings.taste.stars" becomes "ratings.taste.stars".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

var messageTemplates = map[string]string{
	"required":   "is required",
	"datetime":   "must be a date in YYYY-MM-DD form",
	"oneof":      "must be one of: %s",
	"gte":        "must be greater than or equal to %s",
	"startswith": "must start with %q",
}

func translate(fe validator.FieldError) string {
	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		if strings.Contains(tmpl, "%") {
			return fmt.Sprintf(tmpl, fe.Param())
		}
		return tmpl
	}
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
