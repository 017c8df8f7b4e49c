package config

import (
	"fmt"
	"strings"
)

// DefaultSchedule runs the suite once a day at 09:00
const DefaultSchedule = "0 9 * * *"

// ScheduleConfig holds configuration for the recurring runner
type ScheduleConfig struct {
	Spec   string
	Policy string
}

// LoadScheduleConfig loads schedule configuration from environment variables
func LoadScheduleConfig(getenv func(string) string) (*ScheduleConfig, error) {
	config := &ScheduleConfig{
		Spec:   strings.TrimSpace(getenv("SCHEDULE")),
		Policy: strings.ToLower(strings.TrimSpace(getenv("SCHEDULE_POLICY"))),
	}
	if config.Spec == "" {
		config.Spec = DefaultSchedule
	}
	switch config.Policy {
	case "":
		config.Policy = "skip"
	case "skip", "delay":
	default:
		return nil, fmt.Errorf("SCHEDULE_POLICY must be skip or delay, got %q", config.Policy)
	}
	return config, nil
}
