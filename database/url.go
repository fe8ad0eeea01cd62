package database

import (
	"net/url"
	"strings"
)

const defaultSSLMode = "disable"

// ConstructDatabaseURL points a server URL at databaseName. The name replaces any
// database already in the URL, and sslmode defaults to disable for local servers.
// Key/value DSNs ("host=... user=...") get dbname and sslmode appended instead.
// An empty name returns baseURL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	if !strings.Contains(baseURL, "://") {
		return keyValueDSN(baseURL, databaseName)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		// Let pgx report the malformed URL
		return baseURL
	}
	u.Path = "/" + databaseName
	u.RawPath = ""

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", defaultSSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

func keyValueDSN(dsn, databaseName string) string {
	dsn = strings.TrimSpace(dsn)
	parts := []string{}
	if dsn != "" {
		parts = append(parts, dsn)
	}
	if !strings.Contains(dsn, "dbname=") {
		parts = append(parts, "dbname="+databaseName)
	}
	if !strings.Contains(dsn, "sslmode=") {
		parts = append(parts, "sslmode="+defaultSSLMode)
	}
	return strings.Join(parts, " ")
}
