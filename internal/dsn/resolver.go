// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"sort"
	"strings"
)

// DetectDBType detects the database type from a DSN string
func DetectDBType(dsn string) DBType {
	lower := strings.ToLower(strings.TrimSpace(dsn))

	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DBTypePostgreSQL
	case strings.HasPrefix(lower, "mysql://"):
		return DBTypeMySQL
	case strings.HasPrefix(lower, "sqlite:"):
		return DBTypeSQLite
	}
	return DBTypeUnknown
}

// resolverFor returns the resolver for dsn's scheme.
func resolverFor(dsn string) (Resolver, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a valid database connection string")
	}
	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return NewPostgreSQLResolver(), nil
	case DBTypeMySQL:
		return NewMySQLResolver(), nil
	case DBTypeSQLite:
		return NewSQLiteResolver(), nil
	default:
		return nil, NewParseError(dsn, "unknown database type", "use postgres://, mysql:// or sqlite://")
	}
}

// Parse parses a DSN string and returns the normalized connection string.
// This is the main entry point for DSN parsing.
func Parse(dsn string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}
	info, err := resolver.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return "", err
	}
	return resolver.Normalize(info)
}

// Validate validates a DSN string without normalizing it
func Validate(dsn string) error {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return err
	}
	return resolver.Validate(strings.TrimSpace(dsn))
}

// ParseInfo parses a DSN string and returns detailed DSN info
func ParseInfo(dsn string) (*DSNInfo, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return nil, err
	}
	return resolver.Parse(strings.TrimSpace(dsn))
}

// DriverSource returns the database/sql driver name and data source for
// info. PostgreSQL is served by pgx directly and returns the normalized URL
// with driver name "pgx".
func DriverSource(info *DSNInfo) (driver string, source string, err error) {
	switch info.Type {
	case DBTypePostgreSQL:
		source, err = NewPostgreSQLResolver().Normalize(info)
		return "pgx", source, err
	case DBTypeMySQL:
		return "mysql", NewMySQLResolver().DriverDSN(info), nil
	case DBTypeSQLite:
		return "sqlite", NewSQLiteResolver().DriverDSN(info), nil
	default:
		return "", "", NewParseError(info.Original, "unknown database type", "use postgres://, mysql:// or sqlite://")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
