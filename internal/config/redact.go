package config

import "strings"

// MaskCredential masks a credential for display, keeping at most the first
// and last four characters.
func MaskCredential(value string) string {
	switch n := len(value); {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return value[:2] + strings.Repeat("*", n-2)
	default:
		return value[:4] + strings.Repeat("*", n-8) + value[n-4:]
	}
}

// Redacted returns a copy of the configuration with notification secrets
// masked. Webhook URLs usually embed a token, so they are masked too.
func (c *Config) Redacted() *Config {
	out := *c
	out.Notifications.Telegram.BotToken = MaskCredential(c.Notifications.Telegram.BotToken)
	out.Notifications.Webhook.URL = MaskCredential(c.Notifications.Webhook.URL)
	return &out
}
