package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL appends databaseName to baseURL, keeping any query
// parameters, and adds sslmode=disable unless an sslmode is already set.
// An empty databaseName returns baseURL unchanged.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, _ := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	databaseURL := fmt.Sprintf("%s/%s", base, databaseName)
	if query != "" {
		databaseURL += "?" + query
	}

	if !strings.Contains(query, "sslmode=") {
		separator := "&"
		if query == "" {
			separator = "?"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}
