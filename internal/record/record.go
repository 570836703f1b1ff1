// Package record defines the fermentation record and is the single
// authority on whether a document is a valid record.
//
// A Record carries fields common to every batch plus a Details value whose
// concrete type is the state discriminator: Provisional, Completed or
// Failed. Code that depends on state switches over the Details type; no
// other package inspects state-specific fields directly.
package record

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle discriminator stored in the "state" field.
type State string

const (
	StateProvisional State = "provisional"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
)

// States lists every state in lifecycle order.
func States() []State {
	return []State{StateProvisional, StateCompleted, StateFailed}
}

// Record is one tracked fermentation batch.
type Record struct {
	ID          string
	Name        string
	Container   string
	StartDate   Date
	EndDate     Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Ingredients []Ingredient
	Images      []Image
	Notes       string
	Details     Details
}

// Ingredient is one line of a batch's recipe.
type Ingredient struct {
	Name     string  `json:"name" yaml:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" yaml:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" yaml:"unit" validate:"max=50"`
}

// Image is an embedded picture. Data is base64 encoded on disk.
type Image struct {
	Name     string `json:"name" yaml:"name" validate:"required,max=255"`
	MimeType string `json:"mimeType" yaml:"mimeType" validate:"required,startswith=image/"`
	Data     []byte `json:"data" yaml:"data" validate:"required,min=1"`
}

// Details holds the state-specific part of a record. The concrete types
// are Provisional, Completed and Failed.
type Details interface {
	State() State
	details()
}

// Provisional is an active batch that has not finished yet.
type Provisional struct{}

// Completed is a finished batch with its tasting ratings.
type Completed struct {
	CompletedAt Date
	Ratings     Ratings
}

// Failed is an abandoned batch. Reason is required.
type Failed struct {
	Reason   string
	FailedAt Date // optional
}

func (Provisional) State() State { return StateProvisional }
func (Completed) State() State   { return StateCompleted }
func (Failed) State() State      { return StateFailed }

func (Provisional) details() {}
func (Completed) details()   {}
func (Failed) details()      {}

// Ratings are the five independent tasting scores of a completed batch.
type Ratings struct {
	Overall    Rating
	Taste      Rating
	Aroma      Rating
	Texture    Rating
	Appearance Rating
}

// Rating is an optional 1 to 5 star score with free-text notes.
type Rating struct {
	Stars *int   `json:"stars,omitempty" yaml:"stars,omitempty" validate:"omitempty,min=1,max=5"`
	Notes string `json:"notes" yaml:"notes" validate:"max=2000"`
}

// Stars returns a pointer to n, for building ratings.
func Stars(n int) *int {
	return &n
}

// State returns the record's lifecycle state.
func (r Record) State() State {
	if r.Details == nil {
		return StateProvisional
	}
	return r.Details.State()
}

// Active reports whether the batch is still fermenting.
func (r Record) Active() bool {
	return r.State() == StateProvisional
}

// NewID returns a fresh record id.
func NewID() string {
	return uuid.New().String()
}

// New returns a provisional record with a fresh id and timestamps. Lists
// start empty, never nil, matching what Parse returns.
func New(name string, start, end Date, now time.Time) Record {
	now = now.UTC()
	return Record{
		ID:          NewID(),
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		CreatedAt:   now,
		UpdatedAt:   now,
		Ingredients: []Ingredient{},
		Images:      []Image{},
		Details:     Provisional{},
	}
}

// Clone returns a deep copy so mutators cannot alias the cached value.
func (r Record) Clone() Record {
	out := r
	out.Ingredients = slices.Clone(r.Ingredients)
	if r.Images != nil {
		out.Images = make([]Image, len(r.Images))
		for i, img := range r.Images {
			img.Data = slices.Clone(img.Data)
			out.Images[i] = img
		}
	}
	if c, ok := r.Details.(Completed); ok {
		c.Ratings = c.Ratings.clone()
		out.Details = c
	}
	return out
}

func (rs Ratings) clone() Ratings {
	cp := func(r Rating) Rating {
		if r.Stars != nil {
			r.Stars = Stars(*r.Stars)
		}
		return r
	}
	return Ratings{
		Overall:    cp(rs.Overall),
		Taste:      cp(rs.Taste),
		Aroma:      cp(rs.Aroma),
		Texture:    cp(rs.Texture),
		Appearance: cp(rs.Appearance),
	}
}

// Complete returns r moved to the completed state.
func Complete(r Record, at Date, ratings Ratings, now time.Time) Record {
	out := r.Clone()
	out.Details = Completed{CompletedAt: at, Ratings: ratings}
	out.UpdatedAt = now.UTC()
	return out
}

// Fail returns r moved to the failed state.
func Fail(r Record, reason string, at Date, now time.Time) Record {
	out := r.Clone()
	out.Details = Failed{Reason: reason, FailedAt: at}
	out.UpdatedAt = now.UTC()
	return out
}
