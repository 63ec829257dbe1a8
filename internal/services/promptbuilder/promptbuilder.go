// Package promptbuilder formats portfolio snapshots into the
// agent-facing portion of the trading system prompt. Display only:
// values are rounded here, never in the snapshot itself.
package promptbuilder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/svimtrade/janus/internal/entity"
)

const (
	cashDisplayPlaces     = 2
	positionDisplayPlaces = 6
)

// PortfolioSection renders the snapshot as a plain-text block with a
// data-source line, sorted by symbol for stable output.
func PortfolioSection(snapshot *entity.Snapshot) string {
	var b strings.Builder
	b.WriteString("## Current Portfolio\n")

	symbols := make([]string, 0, len(snapshot.Positions))
	for symbol := range snapshot.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	if len(symbols) == 0 {
		b.WriteString("No open positions.\n")
	}
	for _, symbol := range symbols {
		qty := snapshot.Positions[symbol].Round(positionDisplayPlaces)
		fmt.Fprintf(&b, "- %s: %s shares\n", symbol, qty)
	}

	fmt.Fprintf(&b, "- CASH: $%s\n", snapshot.Cash.Round(cashDisplayPlaces))
	fmt.Fprintf(&b, "Data source: %s\n", sourceLine(snapshot))

	return b.String()
}

func sourceLine(snapshot *entity.Snapshot) string {
	if id, ok := snapshot.Source.LedgerID(); ok {
		return fmt.Sprintf("local ledger (record %d)", id)
	}
	return "on-chain wallet"
}
