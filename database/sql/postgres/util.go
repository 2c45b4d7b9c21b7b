package postgres

import (
	"os"
	"strings"
)

// disableDefaultSslOnLocalhost adds sslmode=disable to params
// when host is localhost/127.0.0.1 and the sslmode param and
// PGSSLMODE environment are both not set.
func disableDefaultSslOnLocalhost(params string) string {
	parts := strings.Fields(params)
	isLocalHost := false
	for _, p := range parts {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" {
			isLocalHost = true
		}
	}

	if !isLocalHost {
		return params
	}

	if _, ok := os.LookupEnv("PGSSLMODE"); ok {
		return params
	}

	// found localhost but explicit no sslmode, disable sslmode
	return params + " sslmode=disable"
}

// prefixFromConnectionParams returns the table prefix from the prefix
// parameter, e.g. postgres://localhost/osm?prefix=vancouver. Tables have
// no prefix by default.
func prefixFromConnectionParams(params string) string {
	parts := strings.Fields(params)
	var prefix string
	for _, p := range parts {
		if strings.HasPrefix(p, "prefix=") {
			prefix = strings.Replace(p, "prefix=", "", 1)
			break
		}
	}
	if prefix == "" || prefix == "NONE" {
		return ""
	}
	if prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}
	return prefix
}

// stripPrefixParam removes the prefix parameter, it is not known to
// PostgreSQL.
func stripPrefixParam(params string) string {
	parts := strings.Fields(params)
	result := parts[:0]
	for _, p := range parts {
		if !strings.HasPrefix(p, "prefix=") {
			result = append(result, p)
		}
	}
	return strings.Join(result, " ")
}
