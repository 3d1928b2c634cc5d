// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides secure console output: masking of credentials in
// anything printed, user-friendly presentation of connection errors, and the
// structured debug logger.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	// greedy up to the last '@' so passwords containing '@' are fully hidden
	reDSNPass = regexp.MustCompile(`(?i)(://)[^:/@\s]+:\S*@`)
	reAPIKey  = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;]+)`)
	reEnvPass = regexp.MustCompile(`\b(PGPASSWORD|MYSQL_PWD|DBPROVISION_DSN|DATABASE_URL)=(\S+)`)
	// CREATE/ALTER USER ... PASSWORD '...' and MySQL IDENTIFIED BY '...'
	reSQLPass = regexp.MustCompile(`(?i)(\b(?:PASSWORD|IDENTIFIED\s+BY)\s+)'(?:[^']|'')*'`)
)

// Mask replaces sensitive values in the input string with "*".
// For DSN strings, both username and password are masked.
func Mask(s string) string {
	out := s
	out = reDSNPass.ReplaceAllString(out, "$1*:*@")
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	out = reEnvPass.ReplaceAllString(out, "$1=***")
	out = reSQLPass.ReplaceAllString(out, "$1'***'")
	return out
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
