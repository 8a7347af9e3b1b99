package utils

import (
	"time"

	"options-dashboard/internal/models"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// MarketStatusAt returns the NSE cash-market status at t.
// Exchange holidays are not modelled.
func MarketStatusAt(t time.Time) models.MarketStatus {
	now := t.In(IndiaLocation)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.MarketClosed
	}

	minutes := now.Hour()*60 + now.Minute()

	// Pre-open: 9:00 - 9:15
	if minutes >= 540 && minutes < 555 {
		return models.MarketPreOpen
	}

	// Market open: 9:15 - 15:30
	if minutes >= 555 && minutes < 930 {
		return models.MarketOpen
	}

	return models.MarketClosed
}
