// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "strings"

// MemoryDatabase is the SQLite in-memory database name.
const MemoryDatabase = ":memory:"

// InMemory reports whether info names an in-memory SQLite database, whose
// contents are gone once the connection closes.
func (d *DSNInfo) InMemory() bool {
	return d.Type == DBTypeSQLite && d.Database == MemoryDatabase
}

// SQLiteResolver handles sqlite://path and sqlite::memory: DSNs.
// Database holds the file path.
type SQLiteResolver struct{}

// NewSQLiteResolver creates a new SQLite resolver
func NewSQLiteResolver() *SQLiteResolver {
	return &SQLiteResolver{}
}

// Parse parses a SQLite DSN.
func (r *SQLiteResolver) Parse(dsn string) (*DSNInfo, error) {
	info := &DSNInfo{Type: DBTypeSQLite, Params: make(map[string]string), Original: dsn}
	lower := strings.ToLower(dsn)
	var rest string
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		rest = dsn[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		rest = dsn[len("sqlite:"):]
	default:
		return nil, NewParseError(dsn, "missing or invalid scheme", "use sqlite://path/to/file.db or sqlite::memory:")
	}

	path, params, _ := strings.Cut(rest, "?")
	for _, param := range strings.Split(params, "&") {
		if k, v, ok := strings.Cut(param, "="); ok {
			info.Params[k] = v
		}
	}
	info.Database = strings.TrimSpace(path)
	if info.Database == "" {
		return nil, NewParseError(dsn, "missing database path", "use sqlite://path/to/file.db or sqlite::memory:")
	}
	return info, nil
}

// Normalize renders info as sqlite://path[?params].
func (r *SQLiteResolver) Normalize(info *DSNInfo) (string, error) {
	if info == nil {
		return "", NewParseError("", "nil DSN info", "")
	}
	out := "sqlite://" + info.Database
	if q := r.query(info); q != "" {
		out += "?" + q
	}
	return out, nil
}

// Validate checks if the DSN is valid for SQLite
func (r *SQLiteResolver) Validate(dsn string) error {
	_, err := r.Parse(dsn)
	return err
}

// DriverDSN renders info in the form modernc.org/sqlite expects.
func (r *SQLiteResolver) DriverDSN(info *DSNInfo) string {
	if q := r.query(info); q != "" {
		return "file:" + info.Database + "?" + q
	}
	return info.Database
}

func (r *SQLiteResolver) query(info *DSNInfo) string {
	if len(info.Params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(info.Params))
	for _, k := range sortedKeys(info.Params) {
		parts = append(parts, k+"="+info.Params[k])
	}
	return strings.Join(parts, "&")
}
