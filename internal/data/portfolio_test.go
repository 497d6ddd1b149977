package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortfolio(t *testing.T) {
	csv := `symbol,quantity,cost_basis,account
AAPL,100,145.20,main
spy , 50 , 410.00 , main
,10,1.00,empty-symbol-skipped
`
	holdings, err := ParsePortfolio(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, 100.0, holdings["AAPL"].Quantity)
	assert.Equal(t, 145.20, holdings["AAPL"].CostBasis)
	assert.Equal(t, 50.0, holdings["SPY"].Quantity, "symbols normalize to upper case")
}

func TestParsePortfolioAlternateHeaders(t *testing.T) {
	csv := "ticker,shares\nMSFT,25\n"
	holdings, err := ParsePortfolio(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 25.0, holdings["MSFT"].Quantity)
}

func TestParsePortfolioMissingSymbolColumn(t *testing.T) {
	_, err := ParsePortfolio(strings.NewReader("qty,cost\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing symbol column")
}

func TestHeldSet(t *testing.T) {
	held := HeldSet(map[string]Holding{"AAPL": {Symbol: "AAPL"}})
	assert.True(t, held["AAPL"])
	assert.False(t, held["SPY"])
}
