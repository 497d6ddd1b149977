package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilFilterAllowsEverything(t *testing.T) {
	var f *Filter
	assert.True(t, f.Allows("SPY", "ETF"))
}

func TestSymbolIncludeExclude(t *testing.T) {
	f := NewFilter([]string{"spy", "QQQ"}, []string{"qqq"}, nil, nil)

	assert.True(t, f.Allows("SPY", ""))
	assert.False(t, f.Allows("QQQ", ""), "exclude wins over include")
	assert.False(t, f.Allows("TSLA", ""), "not on the include list")
}

func TestClassFilters(t *testing.T) {
	f := NewFilter(nil, nil, []string{"equity", "etf"}, []string{"futures"})

	assert.True(t, f.Allows("AAPL", "Equity"))
	assert.True(t, f.Allows("SPY", "ETF"))
	assert.False(t, f.Allows("ES", "Futures"))
	assert.False(t, f.Allows("GLD", "Commodity"), "class not on the include list")
}

func TestAllowsSymbolIgnoresClassSets(t *testing.T) {
	var nilFilter *Filter
	assert.True(t, nilFilter.AllowsSymbol("SPY"))

	f := NewFilter([]string{"spy"}, []string{"tsla"}, []string{"equity"}, nil)
	assert.True(t, f.AllowsSymbol("spy"))
	assert.False(t, f.AllowsSymbol("TSLA"))
	assert.False(t, f.AllowsSymbol("QQQ"), "not on the include list")

	// The class include set cannot be judged without a record, so the
	// symbol-only cut must not apply it.
	classOnly := NewFilter(nil, nil, []string{"equity"}, nil)
	assert.True(t, classOnly.AllowsSymbol("ES"))
	assert.False(t, classOnly.Allows("ES", "Futures"))
}

func TestUnknownClassWithExcludeOnly(t *testing.T) {
	f := NewFilter(nil, nil, nil, []string{"futures"})
	assert.True(t, f.Allows("AAPL", ""), "records without a class pass an exclude-only filter")
}
