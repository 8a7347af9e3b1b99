package options

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-dashboard/internal/models"
)

func TestSuggestCall(t *testing.T) {
	s := Suggest(models.BreakoutRow{Symbol: "TATAMOTORS", Price: 975, Signal: "Above 20EMA"})

	if s.Strike != 1000 {
		t.Errorf("Strike = %v, want 1000", s.Strike)
	}
	if s.Direction != models.DirectionCall {
		t.Errorf("Direction = %s", s.Direction)
	}
	if s.StopLoss != 955.50 {
		t.Errorf("StopLoss = %v, want 955.50", s.StopLoss)
	}
	if s.Expiry != models.ExpiryWeekly {
		t.Errorf("Expiry = %s", s.Expiry)
	}
	if s.Symbol != "TATAMOTORS" || s.Signal != "Above 20EMA" {
		t.Errorf("row fields not carried: %+v", s)
	}
}

func TestSuggestPut(t *testing.T) {
	s := Suggest(models.BreakoutRow{Symbol: "INFY", Price: 1500, Signal: "Below Yesterday Low"})

	if s.Direction != models.DirectionPut {
		t.Errorf("Direction = %s", s.Direction)
	}
	if s.Strike != 1500 || s.StopLoss != 1530 {
		t.Errorf("Strike=%v StopLoss=%v", s.Strike, s.StopLoss)
	}
	if s.Expiry != models.ExpiryMonthly {
		t.Errorf("Expiry = %s", s.Expiry)
	}
}

func TestStrikeMidpoints(t *testing.T) {
	tests := map[float64]float64{
		1024.99: 1000,
		1025:    1000,
		1075:    1100,
		1075.01: 1100,
		25:      0,
		75:      100,
		2613.4:  2600,
	}
	for price, want := range tests {
		if got := Strike(price); got != want {
			t.Errorf("Strike(%v) = %v, want %v", price, got, want)
		}
	}
}

func TestExpiryBoundary(t *testing.T) {
	if Expiry(999.99) != models.ExpiryWeekly {
		t.Error("999.99 should be weekly")
	}
	if Expiry(1000) != models.ExpiryMonthly {
		t.Error("1000 should be monthly")
	}
}

func TestStopLossRounding(t *testing.T) {
	// 123.45 * 0.98 = 120.981
	if got := StopLoss(123.45, models.DirectionCall); got != 120.98 {
		t.Errorf("StopLoss = %v", got)
	}
	// 123.45 * 1.02 = 125.919
	if got := StopLoss(123.45, models.DirectionPut); got != 125.92 {
		t.Errorf("StopLoss = %v", got)
	}
}

func TestSuggestAllPreservesOrder(t *testing.T) {
	rows := []models.BreakoutRow{
		{Symbol: "A", Price: 2000, Signal: "Above Yesterday High"},
		{Symbol: "B", Price: 500, Signal: "Below Yesterday Low"},
	}
	got := SuggestAll(rows)
	if len(got) != 2 || got[0].Symbol != "A" || got[1].Symbol != "B" {
		t.Errorf("SuggestAll = %+v", got)
	}
	if len(SuggestAll(nil)) != 0 {
		t.Error("expected empty result")
	}
}

func TestSuggestionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("strike is a multiple of 50 within 25 of price", prop.ForAll(
		func(price float64) bool {
			s := Strike(price)
			return math.Mod(s, 50) == 0 && math.Abs(s-price) <= 25
		},
		gen.Float64Range(1, 100000),
	))

	properties.Property("stop-loss sits against the direction", prop.ForAll(
		func(price float64, bullish bool) bool {
			signal := "Below Yesterday Low"
			if bullish {
				signal = "Above 20EMA"
			}
			s := Suggest(models.BreakoutRow{Price: price, Signal: signal})
			if bullish {
				return s.Direction == models.DirectionCall && s.StopLoss < price
			}
			return s.Direction == models.DirectionPut && s.StopLoss > price
		},
		gen.Float64Range(100, 100000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
