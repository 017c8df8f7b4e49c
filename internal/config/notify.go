package config

// NotifyConfig holds configuration for the result webhook
type NotifyConfig struct {
	WebhookURL string
	APIKey     string
}

// LoadNotifyConfig loads webhook configuration from environment variables.
// An empty WebhookURL disables notifications.
func LoadNotifyConfig(getenv func(string) string) NotifyConfig {
	return NotifyConfig{
		WebhookURL: getenv("NOTIFY_WEBHOOK_URL"),
		APIKey:     getenv("NOTIFY_API_KEY"),
	}
}

// Enabled reports whether a webhook is configured
func (c NotifyConfig) Enabled() bool {
	return c.WebhookURL != ""
}
