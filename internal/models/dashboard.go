package models

import "time"

// SourceStatus tells which symbol source produced a SymbolLoad.
type SourceStatus string

const (
	SourcePrimary  SourceStatus = "PRIMARY"
	SourceFallback SourceStatus = "FALLBACK"
)

// SymbolLoad is the result of loading the symbol universe. A FALLBACK status
// always carries the Warning that caused it.
type SymbolLoad struct {
	Symbols []string     `json:"symbols"`
	Source  string       `json:"source"`
	Status  SourceStatus `json:"status"`
	Warning string       `json:"warning,omitempty"`
}

// Degraded reports whether the primary source failed.
func (l SymbolLoad) Degraded() bool {
	return l.Status == SourceFallback
}

// DashboardState is everything one refresh cycle produces.
type DashboardState struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	MarketStatus MarketStatus       `json:"market_status"`
	Load         SymbolLoad         `json:"load"`
	Candidates   int                `json:"candidates"`
	Validated    []string           `json:"validated"`
	CacheHit     bool               `json:"cache_hit"`
	Scanned      int                `json:"scanned"`
	Breakouts    []BreakoutRow      `json:"breakouts"`
	Suggestions  []OptionSuggestion `json:"suggestions"`
	Chain        *OptionChain       `json:"chain,omitempty"`
	Warnings     []string           `json:"warnings,omitempty"`
	Duration     time.Duration      `json:"duration"`
}
