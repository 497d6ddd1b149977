// Package universe narrows the symbol set before the screening chain runs:
// include/exclude lists over symbols and over asset classes or sectors.
package universe

import "strings"

// Filter holds the resolved include/exclude sets. A nil Filter passes
// everything. Matching is case-insensitive.
type Filter struct {
	include        map[string]struct{}
	exclude        map[string]struct{}
	includeClasses map[string]struct{}
	excludeClasses map[string]struct{}
}

// NewFilter builds a filter from comma-separated-style slices. Empty
// slices impose no constraint.
func NewFilter(include, exclude, includeClasses, excludeClasses []string) *Filter {
	return &Filter{
		include:        toSet(include),
		exclude:        toSet(exclude),
		includeClasses: toSet(includeClasses),
		excludeClasses: toSet(excludeClasses),
	}
}

// Allows reports whether a symbol with the given asset class (or sector)
// survives the pre-chain universe cut. Excludes win over includes.
func (f *Filter) Allows(symbol, class string) bool {
	if f == nil {
		return true
	}
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	cls := strings.ToUpper(strings.TrimSpace(class))

	if _, banned := f.exclude[sym]; banned {
		return false
	}
	if _, banned := f.excludeClasses[cls]; banned && cls != "" {
		return false
	}
	if len(f.include) > 0 {
		if _, ok := f.include[sym]; !ok {
			return false
		}
	}
	if len(f.includeClasses) > 0 {
		if _, ok := f.includeClasses[cls]; !ok {
			return false
		}
	}
	return true
}

// AllowsSymbol applies only the symbol sets, for trimming a symbol list
// before any records (and their asset classes) exist. A symbol that passes
// here may still fall to the class cut once its record is known.
func (f *Filter) AllowsSymbol(symbol string) bool {
	if f == nil {
		return true
	}
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if _, banned := f.exclude[sym]; banned {
		return false
	}
	if len(f.include) > 0 {
		if _, ok := f.include[sym]; !ok {
			return false
		}
	}
	return true
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
