// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// ConnErrorType represents the category of a database connection error.
type ConnErrorType int

const (
	ConnErrorUnknown ConnErrorType = iota
	ConnErrorNetwork
	ConnErrorDNS
	ConnErrorAuth
	ConnErrorTLS
	ConnErrorTimeout
	ConnErrorDatabaseMissing
)

// ParseConnError categorizes a connection error, preferring typed errors
// from the net package and falling back to the message text.
func ParseConnError(err error) ConnErrorType {
	if err == nil {
		return ConnErrorUnknown
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ConnErrorDNS
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ConnErrorTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ConnErrorNetwork
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "no such host"), strings.Contains(lower, "server misbehaving"):
		return ConnErrorDNS
	case strings.Contains(lower, "password authentication failed"),
		strings.Contains(lower, "access denied"),
		strings.Contains(lower, "28p01"),
		strings.Contains(lower, "28000"):
		return ConnErrorAuth
	case strings.Contains(lower, "tls"), strings.Contains(lower, "ssl"), strings.Contains(lower, "certificate"):
		return ConnErrorTLS
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline"):
		return ConnErrorTimeout
	case strings.Contains(lower, "does not exist") && strings.Contains(lower, "database"),
		strings.Contains(lower, "unknown database"),
		strings.Contains(lower, "3d000"):
		return ConnErrorDatabaseMissing
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "network is unreachable"),
		strings.Contains(lower, "broken pipe"):
		return ConnErrorNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ConnErrorNetwork
	}
	return ConnErrorUnknown
}

// FormatConnectionError formats a connection error in a user-friendly way.
// Credentials in the technical details are masked.
func FormatConnectionError(err error) string {
	errType := ParseConnError(err)

	var builder strings.Builder
	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Database Connection Failed"))
	builder.WriteString("\n\n")

	switch errType {
	case ConnErrorNetwork:
		builder.WriteString("The database server could not be reached.\n")
		builder.WriteString("Check that:\n")
		builder.WriteString("  • The host and port are correct\n")
		builder.WriteString("  • The server is running and accepts remote connections\n")
		builder.WriteString("  • No firewall blocks the port\n")
	case ConnErrorDNS:
		builder.WriteString("The database host name could not be resolved.\n")
		builder.WriteString("Check the host part of your connection string for typos.\n")
	case ConnErrorAuth:
		builder.WriteString("The server rejected the credentials.\n")
		builder.WriteString("Check the user name and password. Passwords containing\n")
		builder.WriteString("'@', ':' or '/' may need to be URL-encoded.\n")
	case ConnErrorTLS:
		builder.WriteString("The TLS handshake with the server failed.\n")
		builder.WriteString("Hosted databases usually require sslmode=require; local\n")
		builder.WriteString("servers may need --require-tls=false.\n")
	case ConnErrorTimeout:
		builder.WriteString("The connection attempt timed out.\n")
		builder.WriteString("The server may be overloaded or the network path slow.\n")
	case ConnErrorDatabaseMissing:
		builder.WriteString("The server is reachable but the database does not exist.\n")
		builder.WriteString("Create it first or fix the database name.\n")
	default:
		builder.WriteString("The connection could not be established.\n")
	}

	builder.WriteString("\n")
	builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'dbprovision dbinfo' to see which connection is used"))
	builder.WriteString("\n")

	if err != nil && strings.TrimSpace(err.Error()) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}
	return builder.String()
}

// PresentConnectionError displays a formatted connection error.
func PresentConnectionError(err error) {
	fmt.Println()
	fmt.Println(FormatConnectionError(err))
	fmt.Println()
}
