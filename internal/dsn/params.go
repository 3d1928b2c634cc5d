// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import "strings"

// Params are discrete connection parameters used when no DSN is given.
type Params struct {
	// Driver is "postgres", "mysql" or "sqlite". Empty means postgres.
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	// RequireTLS asks for an encrypted transport.
	RequireTLS bool
}

// FromParams builds DSN info from discrete parameters.
func FromParams(p Params) (*DSNInfo, error) {
	dbType, err := driverType(p.Driver)
	if err != nil {
		return nil, err
	}

	info := &DSNInfo{
		Type:     dbType,
		Host:     strings.TrimSpace(p.Host),
		Port:     strings.TrimSpace(p.Port),
		User:     strings.TrimSpace(p.User),
		Password: p.Password,
		Database: strings.TrimSpace(p.Database),
		Params:   make(map[string]string),
	}

	switch dbType {
	case DBTypeSQLite:
		if info.Database == "" {
			return nil, NewParseError("", "missing database path", "set the database to a file path or :memory:")
		}
		return info, nil
	case DBTypePostgreSQL:
		if info.Port == "" {
			info.Port = "5432"
		}
		if p.RequireTLS {
			info.Params["sslmode"] = "require"
		}
	case DBTypeMySQL:
		if info.Port == "" {
			info.Port = "3306"
		}
		if p.RequireTLS {
			// Encrypt without verifying the server certificate, like sslmode=require.
			info.Params["tls"] = "skip-verify"
		}
	}

	var missing []string
	if info.Host == "" {
		missing = append(missing, "host")
	}
	if info.User == "" {
		missing = append(missing, "user")
	}
	if info.Database == "" {
		missing = append(missing, "database")
	}
	if len(missing) > 0 {
		return nil, NewParseError("", "missing "+strings.Join(missing, ", "), "pass --dsn or set the connection parameters")
	}
	if !numericPort.MatchString(info.Port) {
		return nil, NewParseError("", "invalid port number: "+info.Port, "port must be numeric")
	}
	return info, nil
}

// Build builds and normalizes a DSN from discrete parameters.
func Build(p Params) (string, error) {
	info, err := FromParams(p)
	if err != nil {
		return "", err
	}
	switch info.Type {
	case DBTypeMySQL:
		return NewMySQLResolver().Normalize(info)
	case DBTypeSQLite:
		return NewSQLiteResolver().Normalize(info)
	default:
		return NewPostgreSQLResolver().Normalize(info)
	}
}

// EnsureParam sets key=value on a DSN when the key is not already present
// and returns the normalized result.
func EnsureParam(dsn, key, value string) (string, error) {
	resolver, err := resolverFor(dsn)
	if err != nil {
		return "", err
	}
	info, err := resolver.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return "", err
	}
	if _, ok := info.Params[key]; !ok {
		info.Params[key] = value
	}
	return resolver.Normalize(info)
}

// RequireTLS adds the encryption parameter for dsn's database type unless
// one is already set: sslmode=require for PostgreSQL and tls=skip-verify for
// MySQL. SQLite DSNs are returned normalized and unchanged.
func RequireTLS(dsn string) (string, error) {
	switch DetectDBType(dsn) {
	case DBTypePostgreSQL:
		return EnsureParam(dsn, "sslmode", "require")
	case DBTypeMySQL:
		return EnsureParam(dsn, "tls", "skip-verify")
	default:
		return Parse(dsn)
	}
}

func driverType(driver string) (DBType, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pg", "pgx":
		return DBTypePostgreSQL, nil
	case "mysql":
		return DBTypeMySQL, nil
	case "sqlite", "sqlite3":
		return DBTypeSQLite, nil
	default:
		return DBTypeUnknown, NewParseError("", "unknown driver "+driver, "use postgres, mysql or sqlite")
	}
}
