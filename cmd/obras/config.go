package main

import (
	"net/url"
	"strings"
)

const defaultDSN = "obras.sqlite3"

// resolveDSN picks the connection string: the flag, then the environment,
// then the default sqlite file.
func resolveDSN(flagValue, envValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(envValue); v != "" {
		return v
	}
	return defaultDSN
}

// redactDSN hides the password of URL connection strings for logging.
func redactDSN(dsn string) string {
	if !strings.Contains(dsn, "://") {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "(unparsable connection string)"
	}
	return u.Redacted()
}
