package config

import (
	"fmt"
	"strings"

	"github.com/gocql/gocql"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"text": true, "json": true}
var validKeyPolicies = map[string]bool{"fail": true, "drop": true}

// Validate performs offline structural validation and returns every problem
// found, one per line.
func (c Config) Validate() error {
	var errs []string

	if len(c.Cassandra.ContactPoints) == 0 {
		errs = append(errs, "cassandra.contact_points is required")
	}
	if c.Cassandra.Keyspace == "" {
		errs = append(errs, "cassandra.keyspace is required")
	}
	if c.Cassandra.Port <= 0 || c.Cassandra.Port > 65535 {
		errs = append(errs, fmt.Sprintf("cassandra.port must be in 1..65535, got %d", c.Cassandra.Port))
	}
	if c.Cassandra.Timeout <= 0 {
		errs = append(errs, "cassandra.timeout must be > 0")
	}
	if c.Cassandra.Consistency != "" {
		if _, err := gocql.ParseConsistencyWrapper(c.Cassandra.Consistency); err != nil {
			errs = append(errs, fmt.Sprintf("cassandra.consistency: %v", err))
		}
	}

	if !validKeyPolicies[c.KeyPolicy] {
		errs = append(errs, fmt.Sprintf("key_policy must be %q or %q, got %q", "fail", "drop", c.KeyPolicy))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if !validLogFormats[strings.ToLower(c.LogFormat)] {
		errs = append(errs, fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
