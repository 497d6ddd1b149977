package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Holding is one existing portfolio position. Held symbols resolve to
// HOLD/SCALE in the vote ladder instead of the normal conviction tiers.
type Holding struct {
	Symbol    string
	Quantity  float64
	CostBasis float64
}

// LoadPortfolio parses a holdings CSV with a header row containing at least
// a symbol column; quantity and cost_basis columns are optional. Unknown
// columns are ignored so exports from different brokers parse unchanged.
func LoadPortfolio(path string) (map[string]Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer f.Close()
	return ParsePortfolio(f)
}

// ParsePortfolio reads holdings CSV from r.
func ParsePortfolio(r io.Reader) (map[string]Holding, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read portfolio header: %w", err)
	}
	symCol, qtyCol, costCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker":
			symCol = i
		case "quantity", "qty", "shares":
			qtyCol = i
		case "cost_basis", "cost", "avg_price":
			costCol = i
		}
	}
	if symCol < 0 {
		return nil, fmt.Errorf("portfolio CSV missing symbol column (header: %s)", strings.Join(header, ","))
	}

	holdings := make(map[string]Holding)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("portfolio line %d: %w", line, err)
		}
		sym := strings.ToUpper(strings.TrimSpace(row[symCol]))
		if sym == "" {
			continue
		}
		h := Holding{Symbol: sym}
		if qtyCol >= 0 && qtyCol < len(row) {
			h.Quantity, _ = strconv.ParseFloat(strings.TrimSpace(row[qtyCol]), 64)
		}
		if costCol >= 0 && costCol < len(row) {
			h.CostBasis, _ = strconv.ParseFloat(strings.TrimSpace(row[costCol]), 64)
		}
		holdings[sym] = h
	}
	return holdings, nil
}

// HeldSet projects holdings down to the symbol set the vote ladder needs.
func HeldSet(holdings map[string]Holding) map[string]bool {
	held := make(map[string]bool, len(holdings))
	for sym := range holdings {
		held[sym] = true
	}
	return held
}
