package render

import (
	"fmt"
	"strings"
	"time"

	"options-dashboard/internal/models"
	"options-dashboard/pkg/utils"
)

// Title heads the terminal dashboard.
const Title = "F&O Breakout & Options Dashboard"

// SignalCell styles a signal label: bold green for any "Above" condition,
// otherwise bold red for "Below", otherwise unstyled.
func (o *Output) SignalCell(signal string) string {
	switch {
	case strings.Contains(signal, "Above"):
		return o.bullish.Sprint(signal)
	case strings.Contains(signal, "Below"):
		return o.bearish.Sprint(signal)
	default:
		return signal
	}
}

// MarketStatus returns a colored market status label.
func (o *Output) MarketStatus(status models.MarketStatus) string {
	switch status {
	case models.MarketOpen:
		return o.Green("● OPEN")
	case models.MarketPreOpen:
		return o.Yellow("● PRE-OPEN")
	case models.MarketClosed:
		return o.Red("● CLOSED")
	default:
		return string(status)
	}
}

func price(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// BreakoutTable renders the top breakout rows.
func (o *Output) BreakoutTable(rows []models.BreakoutRow) {
	if len(rows) == 0 {
		o.Dim("No breakouts detected.")
		return
	}

	t := NewTable(o, "Stock", "Current Price", "20 EMA", "Prev High", "Prev Low", "Signal")
	for i := 1; i <= 4; i++ {
		t.SetAlign(i, AlignRight)
	}
	for _, r := range rows {
		t.AddRow(r.Symbol, price(r.Price), price(r.EMA20), price(r.PrevHigh), price(r.PrevLow), o.SignalCell(r.Signal))
	}
	t.Render()
}

// OptionsTable renders option suggestions.
func (o *Output) OptionsTable(suggestions []models.OptionSuggestion) {
	if len(suggestions) == 0 {
		o.Dim("No option suggestions.")
		return
	}

	t := NewTable(o, "Stock", "Price", "Strike", "Direction", "Stop Loss", "Expiry")
	t.SetAlign(1, AlignRight).SetAlign(2, AlignRight).SetAlign(4, AlignRight)
	for _, s := range suggestions {
		dir := string(s.Direction)
		if s.Direction == models.DirectionCall {
			dir = o.Green(dir)
		} else {
			dir = o.Red(dir)
		}
		t.AddRow(s.Symbol, price(s.Price), fmt.Sprintf("%.0f", s.Strike), dir, price(s.StopLoss), string(s.Expiry))
	}
	t.Render()
}

// ChainTable renders an option chain.
func (o *Output) ChainTable(chain models.OptionChain) {
	header := fmt.Sprintf("Option Chain: %s", chain.Symbol)
	if chain.Underlying > 0 {
		header += fmt.Sprintf("  (spot %s)", utils.FormatIndianNumber(chain.Underlying))
	}
	if chain.Expiry != "" {
		header += "  expiry " + chain.Expiry
	}
	o.Bold("%s", header)

	if len(chain.Rows) == 0 {
		o.Dim("No strikes with both call and put quotes.")
		return
	}

	t := NewTable(o, "Strike", "Call LTP", "Call OI", "Put LTP", "Put OI")
	for i := 0; i < 5; i++ {
		t.SetAlign(i, AlignRight)
	}
	for _, r := range chain.Rows {
		t.AddRow(fmt.Sprintf("%.0f", r.Strike), price(r.CallPrice), utils.FormatOI(r.CallOI), price(r.PutPrice), utils.FormatOI(r.PutOI))
	}
	t.Render()
	if chain.Timestamp != "" {
		o.Dim("As of %s", chain.Timestamp)
	}
}

// Header renders the title block.
func (o *Output) Header(state models.DashboardState) {
	o.Bold("%s", Title)
	o.Printf("%s  Market %s\n", state.GeneratedAt.In(utils.IndiaLocation).Format("02 Jan 2006 15:04:05 MST"), o.MarketStatus(state.MarketStatus))

	source := fmt.Sprintf("Symbols: %d from %s", len(state.Load.Symbols), state.Load.Source)
	if state.Load.Degraded() {
		source = o.Yellow(source + " (fallback)")
	}
	cache := "validated"
	if state.CacheHit {
		cache = "cached"
	}
	o.Printf("%s  |  %d %s  |  %d scanned  |  %d breakouts\n", source, len(state.Validated), cache, state.Scanned, len(state.Breakouts))
}

// Warnings renders the warnings section.
func (o *Output) Warnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	o.Warning("Warnings (%d):", len(warnings))
	for _, w := range warnings {
		o.Warning("  • %s", w)
	}
}

// Note renders the informational footer.
func (o *Output) Note(d time.Duration) {
	o.Dim("Scan took %s. Signals use daily closes; strikes are rounded to the nearest 50.", d.Round(time.Millisecond))
}

// Dashboard renders a full refresh cycle.
func (o *Output) Dashboard(state models.DashboardState) error {
	if o.jsonMode {
		return o.JSON(state)
	}

	o.Header(state)
	o.Println()
	o.Bold("Top Breakouts")
	o.BreakoutTable(state.Breakouts)
	o.Println()
	o.Bold("Options Screener")
	o.OptionsTable(state.Suggestions)
	if state.Chain != nil {
		o.Println()
		o.ChainTable(*state.Chain)
	}
	o.Println()
	o.Warnings(state.Warnings)
	o.Note(state.Duration)
	return nil
}
