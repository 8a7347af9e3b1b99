package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Dashboard Configuration

[symbols]
# CSV file with a SYMBOL column (relative paths are resolved against this directory)
file = "nse_fno_list.csv"
# Header of the symbol column (matched case- and whitespace-insensitively)
column = "SYMBOL"
# Try the NSE F&O listing first and fall back to the file on failure
use_remote = false
listing_url = "https://www.nseindia.com/api/equity-stockIndices?index=SECURITIES%20IN%20F%26O"
# Suffix appended to symbols for the history provider
exchange_suffix = ".NS"

[validator]
# Attempts per symbol when the provider rate-limits
max_retries = 3
# First backoff delay, multiplied by backoff_factor after each retry
base_delay = "750ms"
backoff_factor = 1.5
# Randomized pause inserted between symbols
pause_min = "200ms"
pause_max = "600ms"
# Persisted set of validated symbols
cache_file = "valid_symbols.csv"
# Age after which the cache file is revalidated ("0s" = never)
cache_ttl = "24h"

[screener]
# Trailing trading days fetched per symbol
history_days = 5
ema_span = 20
top_n = 10

[provider]
history_url = "https://query1.finance.yahoo.com/v8/finance/chart"
nse_base_url = "https://www.nseindia.com"
timeout = "15s"
requests_per_second = 8.0
burst = 1
# Consecutive NSE failures before the circuit opens
breaker_failures = 5
breaker_timeout = "30s"

[ui]
# Between 10s and 300s
refresh_interval = "60s"
color_enabled = true
# Strikes shown on each side of the at-the-money strike (0 = all)
chain_strikes = 10

[notifications]
# Send newly detected breakouts to the channels below
enabled = false

[notifications.webhook]
enabled = false
url = ""

[notifications.telegram]
enabled = false
bot_token = ""
chat_id = ""

[logging]
# debug, info, warn, error
level = "info"
file = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "dashboard.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
