package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"webcompat/internal/compat"
	"webcompat/internal/targets"
)

// ValidateConfig validates configuration values and returns an error if any
// are invalid. Called once viper has loaded the configuration, before any
// command runs: configuration errors must fail fast, not mid-scan.
func ValidateConfig() error {
	var errors []string

	if viper.IsSet("severity") {
		if _, err := compat.ParseSeverity(viper.GetString("severity")); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if viper.IsSet("metrics_port") {
		port := viper.GetInt("metrics_port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("metrics_port must be between 1 and 65535, got: %d", port))
		}
	}

	if viper.IsSet("jobs") {
		if jobs := viper.GetInt("jobs"); jobs < 0 {
			errors = append(errors, fmt.Sprintf("jobs must be non-negative, got: %d", jobs))
		}
	}

	if t := viper.GetString("dataset.store"); t != "" {
		switch strings.ToLower(t) {
		case "sqlite", "sqlite3", "postgres", "postgresql":
		default:
			errors = append(errors, fmt.Sprintf("dataset.store must be sqlite or postgres, got: %q", t))
		}
	}

	// Targets may also come from --target flags, so an absent list is fine
	// here; a present but malformed one is not.
	for _, c := range viper.GetStringSlice("targets") {
		if _, err := targets.ParseConstraint(c); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
