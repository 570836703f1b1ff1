package record

import (
	"fmt"
	"time"
)

// wire is the on-disk shape. Keys specific to one variant are pointers so
// they are omitted unless that variant is being written, which keeps key
// presence a function of the state.
type wire struct {
	ID          string       `json:"id" validate:"required"`
	State       State        `json:"state" validate:"required,oneof=provisional completed failed"`
	Name        string       `json:"name" validate:"required,max=200"`
	Container   string       `json:"container" validate:"max=200"`
	StartDate   Date         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     Date         `json:"endDate" validate:"required,datetime=2006-01-02"`
	CreatedAt   time.Time    `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time    `json:"updatedAt" validate:"required"`
	Ingredients []Ingredient `json:"ingredients" validate:"dive"`
	Images      []Image      `json:"images" validate:"dive"`
	Notes       string       `json:"notes"`
	CompletedAt *Date        `json:"completedAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Ratings     *wireRatings `json:"ratings,omitempty"`
	Reason      *string      `json:"reason,omitempty" validate:"omitempty,max=2000"`
	FailedAt    *Date        `json:"failedAt,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type wireRatings struct {
	Overall    *Rating `json:"overall" validate:"required"`
	Taste      *Rating `json:"taste" validate:"required"`
	Aroma      *Rating `json:"aroma" validate:"required"`
	Texture    *Rating `json:"texture" validate:"required"`
	Appearance *Rating `json:"appearance" validate:"required"`
}

func toWire(r Record) (wire, error) {
	w := wire{
		ID:          r.ID,
		Name:        r.Name,
		Container:   r.Container,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Ingredients: r.Ingredients,
		Images:      r.Images,
		Notes:       r.Notes,
	}
	if w.Ingredients == nil {
		w.Ingredients = []Ingredient{}
	}
	if w.Images == nil {
		w.Images = []Image{}
	}

	switch d := r.Details.(type) {
	case Provisional:
		w.State = StateProvisional
	case Completed:
		w.State = StateCompleted
		at := d.CompletedAt
		w.CompletedAt = &at
		rs := d.Ratings
		w.Ratings = &wireRatings{
			Overall:    &rs.Overall,
			Taste:      &rs.Taste,
			Aroma:      &rs.Aroma,
			Texture:    &rs.Texture,
			Appearance: &rs.Appearance,
		}
	case Failed:
		w.State = StateFailed
		reason := d.Reason
		w.Reason = &reason
		if d.FailedAt != "" {
			at := d.FailedAt
			w.FailedAt = &at
		}
	case nil:
		return w, fmt.Errorf("%w: record %s has no state details", ErrInvalid, r.ID)
	default:
		return w, fmt.Errorf("%w: record %s has unknown details %T", ErrInvalid, r.ID, d)
	}
	return w, nil
}

// fromWire builds a Record from a wire value that has passed validation.
func fromWire(w wire) Record {
	r := Record{
		ID:          w.ID,
		Name:        w.Name,
		Container:   w.Container,
		StartDate:   w.StartDate,
		EndDate:     w.EndDate,
		CreatedAt:   w.CreatedAt.UTC(),
		UpdatedAt:   w.UpdatedAt.UTC(),
		Ingredients: w.Ingredients,
		Images:      w.Images,
		Notes:       w.Notes,
	}
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Images == nil {
		r.Images = []Image{}
	}

	switch w.State {
	case StateCompleted:
		r.Details = Completed{
			CompletedAt: *w.CompletedAt,
			Ratings: Ratings{
				Overall:    *w.Ratings.Overall,
				Taste:      *w.Ratings.Taste,
				Aroma:      *w.Ratings.Aroma,
				Texture:    *w.Ratings.Texture,
				Appearance: *w.Ratings.Appearance,
			},
		}
	case StateFailed:
		f := Failed{Reason: *w.Reason}
		if w.FailedAt != nil {
			f.FailedAt = *w.FailedAt
		}
		r.Details = f
	default:
		r.Details = Provisional{}
	}
	return r
}
