package query

import (
	"strings"

	"github.com/jpl-au/fermi/internal/collection"
	"github.com/jpl-au/fermi/internal/record"
)

// ByState selects records in state s.
func ByState(s record.State) Spec {
	return Spec{Filter: func(r record.Record) bool { return r.State() == s }}
}

// Active selects provisional records, soonest end date first.
func Active() Spec {
	spec := ByState(record.StateProvisional)
	spec.SortBy = SortEndDate
	return spec
}

// DueToday selects active records ending on today, by end date.
func DueToday(today record.Date) Spec {
	return Spec{
		Filter: func(r record.Record) bool {
			return r.Active() && r.EndDate == today
		},
		SortBy: SortEndDate,
		Today:  today,
	}
}

// Overdue selects active records whose end date is before today, oldest
// first.
func Overdue(today record.Date) Spec {
	return Spec{
		Filter: func(r record.Record) bool {
			return r.Active() && r.EndDate.Before(today)
		},
		SortBy: SortEndDate,
		Today:  today,
	}
}

// ByID selects the record with id, if any.
func ByID(id string) Spec {
	return Spec{
		Filter: func(r record.Record) bool { return r.ID == id },
		Limit:  1,
	}
}

// FindByID returns the record with id.
func FindByID(c *collection.Collection, id string) (record.Record, bool) {
	rs, err := Run(c, ByID(id))
	if err != nil || len(rs) == 0 {
		return record.Record{}, false
	}
	return rs[0], true
}

// Search selects records whose name, container, notes or ingredient names
// contain text, case-insensitively.
func Search(text string) Spec {
	needle := strings.ToLower(strings.TrimSpace(text))
	return Spec{
		Filter: func(r record.Record) bool {
			if needle == "" {
				return true
			}
			if strings.Contains(strings.ToLower(r.Name), needle) ||
				strings.Contains(strings.ToLower(r.Container), needle) ||
				strings.Contains(strings.ToLower(r.Notes), needle) {
				return true
			}
			for _, in := range r.Ingredients {
				if strings.Contains(strings.ToLower(in.Name), needle) {
					return true
				}
			}
			return false
		},
	}
}
