// Package filter implements the composable predicate algebra the filter
// chain is built from. The algebra is closed: exactly four variants (leaf,
// AND, OR, NOT), so evaluation logic can match on them exhaustively without
// reflection.
package filter

import (
	"fmt"

	"github.com/voltrun/voltrun/internal/domain/metrics"
)

// Result is one predicate's verdict on one record. Reason is a
// human-readable explanation, populated on failure.
type Result struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Specification is a named, stateless, side-effect-free predicate over a
// metrics record. Implementations never panic on well-formed input and
// fail closed (return false, citing the field) when a required field is
// absent. The four implementations in this package are the whole algebra.
type Specification interface {
	Name() string

	// IsSatisfiedBy applies the predicate with short-circuit semantics.
	IsSatisfiedBy(rec *metrics.Record) bool

	// Evaluate applies the predicate and, on failure, reports the first
	// failing leaf's reason.
	Evaluate(rec *metrics.Record) Result
}

// Leaf is a single named check.
type Leaf struct {
	name string
	fn   func(rec *metrics.Record) (bool, string)
}

// NewLeaf builds a leaf whose fn returns pass/fail plus a failure reason.
func NewLeaf(name string, fn func(rec *metrics.Record) (bool, string)) *Leaf {
	return &Leaf{name: name, fn: fn}
}

func (l *Leaf) Name() string { return l.name }

func (l *Leaf) IsSatisfiedBy(rec *metrics.Record) bool {
	ok, _ := l.fn(rec)
	return ok
}

func (l *Leaf) Evaluate(rec *metrics.Record) Result {
	ok, reason := l.fn(rec)
	if ok {
		reason = ""
	}
	return Result{Name: l.name, OK: ok, Reason: reason}
}

type andSpec struct {
	children []Specification
}

// And combines children so every one must pass. Evaluation short-circuits
// on the first false child, whose reason becomes the composite's reason
// (first-failure-wins for reporting, plain logical AND for acceptance).
func And(children ...Specification) Specification {
	return &andSpec{children: children}
}

func (s *andSpec) Name() string { return "and" }

func (s *andSpec) IsSatisfiedBy(rec *metrics.Record) bool {
	for _, c := range s.children {
		if !c.IsSatisfiedBy(rec) {
			return false
		}
	}
	return true
}

func (s *andSpec) Evaluate(rec *metrics.Record) Result {
	for _, c := range s.children {
		if r := c.Evaluate(rec); !r.OK {
			return r
		}
	}
	return Result{Name: s.Name(), OK: true}
}

type orSpec struct {
	children []Specification
}

// Or combines children so any one passing is enough; short-circuits on the
// first true child.
func Or(children ...Specification) Specification {
	return &orSpec{children: children}
}

func (s *orSpec) Name() string { return "or" }

func (s *orSpec) IsSatisfiedBy(rec *metrics.Record) bool {
	for _, c := range s.children {
		if c.IsSatisfiedBy(rec) {
			return true
		}
	}
	return len(s.children) == 0
}

func (s *orSpec) Evaluate(rec *metrics.Record) Result {
	if len(s.children) == 0 {
		return Result{Name: s.Name(), OK: true}
	}
	var first Result
	for i, c := range s.children {
		r := c.Evaluate(rec)
		if r.OK {
			return Result{Name: s.Name(), OK: true}
		}
		if i == 0 {
			first = r
		}
	}
	return first
}

type notSpec struct {
	child Specification
}

// Not inverts a child specification.
func Not(child Specification) Specification {
	return &notSpec{child: child}
}

func (s *notSpec) Name() string { return "not(" + s.child.Name() + ")" }

func (s *notSpec) IsSatisfiedBy(rec *metrics.Record) bool {
	return !s.child.IsSatisfiedBy(rec)
}

func (s *notSpec) Evaluate(rec *metrics.Record) Result {
	r := s.child.Evaluate(rec)
	if r.OK {
		return Result{Name: s.Name(), OK: false, Reason: fmt.Sprintf("%s passed but is negated", s.child.Name())}
	}
	return Result{Name: s.Name(), OK: true}
}

// Explain evaluates every leaf under spec without short-circuiting and
// returns their results in composition order. Used when the goal is
// diagnostic completeness rather than an accept/reject decision.
func Explain(spec Specification, rec *metrics.Record) []Result {
	switch s := spec.(type) {
	case *Leaf:
		return []Result{s.Evaluate(rec)}
	case *andSpec:
		var out []Result
		for _, c := range s.children {
			out = append(out, Explain(c, rec)...)
		}
		return out
	case *orSpec:
		var out []Result
		for _, c := range s.children {
			out = append(out, Explain(c, rec)...)
		}
		return out
	case *notSpec:
		return []Result{s.Evaluate(rec)}
	default:
		return []Result{spec.Evaluate(rec)}
	}
}
