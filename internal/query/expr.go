package query

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/jpl-au/fermi/internal/logging"
	"github.com/jpl-au/fermi/internal/record"
)

// Env is the variable set visible to Where expressions, e.g.
//
//	active && endDate <= today
//	"salt" in ingredients and container contains "crock"
//	state == "completed" && stars >= 4
type Env struct {
	ID          string   `expr:"id"`
	Name        string   `expr:"name"`
	Container   string   `expr:"container"`
	State       string   `expr:"state"`
	Active      bool     `expr:"active"`
	StartDate   string   `expr:"startDate"`
	EndDate     string   `expr:"endDate"`
	Notes       string   `expr:"notes"`
	Ingredients []string `expr:"ingredients"`
	Units       []string `expr:"units"`
	Stars       int      `expr:"stars"`
	Reason      string   `expr:"reason"`
	Today       string   `expr:"today"`
}

// NewEnv builds the expression environment for r.
func NewEnv(r record.Record, today record.Date) Env {
	env := Env{
		ID:        r.ID,
		Name:      r.Name,
		Container: r.Container,
		State:     string(r.State()),
		Active:    r.Active(),
		StartDate: string(r.StartDate),
		EndDate:   string(r.EndDate),
		Notes:     r.Notes,
		Today:     string(today),
	}
	for _, in := range r.Ingredients {
		env.Ingredients = append(env.Ingredients, in.Name)
		if in.Unit != "" {
			env.Units = append(env.Units, in.Unit)
		}
	}
	switch d := r.Details.(type) {
	case record.Completed:
		if d.Ratings.Overall.Stars != nil {
			env.Stars = *d.Ratings.Overall.Stars
		}
	case record.Failed:
		env.Reason = d.Reason
	case record.Provisional, nil:
	}
	return env
}

var programs sync.Map // expression -> *vm.Program

// Compile checks a Where expression and caches the program.
func Compile(where string) (*vm.Program, error) {
	if p, ok := programs.Load(where); ok {
		return p.(*vm.Program), nil
	}
	p, err := expr.Compile(where, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid where expression: %w", err)
	}
	programs.Store(where, p)
	return p, nil
}

type predicate func(record.Record) bool

func compile(spec Spec) (predicate, error) {
	var prog *vm.Program
	if spec.Where != "" {
		p, err := Compile(spec.Where)
		if err != nil {
			return nil, err
		}
		prog = p
	}
	return func(r record.Record) bool {
		if spec.Filter != nil && !spec.Filter(r) {
			return false
		}
		if prog == nil {
			return true
		}
		out, err := expr.Run(prog, NewEnv(r, spec.Today))
		if err != nil {
			logging.Debug().Err(err).Str("id", r.ID).Str("where", spec.Where).Msg("where expression failed")
			return false
		}
		ok, _ := out.(bool)
		return ok
	}, nil
}
