// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error presentation for backend requests.
package httperrors

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	apperrors "sqlpilot/cli/internal/errors"
)

// Notifier surfaces a failed request to the user.
// action describes what was being attempted, e.g. "listing connections".
type Notifier interface {
	Notify(action string, err error)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(action string, err error)

func (f NotifierFunc) Notify(action string, err error) { f(action, err) }

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(string, error) {})

// Terminal prints notifications with pterm.
type Terminal struct {
	// Hints enables the troubleshooting bullet lists under network errors.
	Hints bool
}

// NewTerminal creates a pterm-backed notifier.
func NewTerminal(hints bool) *Terminal {
	return &Terminal{Hints: hints}
}

// Notify displays a user-friendly error message based on error type.
func (t *Terminal) Notify(action string, err error) {
	if err == nil || apperrors.IsCanceled(err) {
		return
	}

	msg := apperrors.UserMessage(err)
	if action != "" {
		pterm.Error.Printf("%s while %s\n", msg, action)
	} else {
		pterm.Error.Println(msg)
	}
	if !t.Hints {
		return
	}

	switch {
	case IsTimeoutError(err):
		showTimeoutHints()
	case isDNSError(err):
		showDNSHints()
	case isConnectionRefusedError(err):
		showConnectionRefusedHints()
	case isSSLError(err):
		showSSLHints()
	case apperrors.StatusOf(err) >= 500:
		showServerHints()
	}
}

// IsTimeoutError checks if the error is a timeout error.
// A ServerError is never a client timeout, even when its detail mentions one.
func IsTimeoutError(err error) bool {
	if err == nil || apperrors.KindOf(err) == apperrors.ServerError {
		return false
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, syscall.ECONNREFUSED)
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	if apperrors.KindOf(err) == apperrors.ServerError {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func showTimeoutHints() {
	pterm.Println("The server took too long to respond. This could mean:")
	pterm.Println("  • The query is slow; narrow it down or add a LIMIT")
	pterm.Println("  • The SQLPilot backend is under heavy load")
	pterm.Println("  • SQLPILOT_TIMEOUT is set too low")
	pterm.Println()
}

func showDNSHints() {
	pterm.Println("Unable to resolve the backend address. Please check:")
	pterm.Println("  • The api_url in your config or SQLPILOT_API_URL")
	pterm.Println("  • Your network and DNS settings")
	pterm.Println()
}

func showConnectionRefusedHints() {
	pterm.Println("The backend is not accepting connections. This could mean:")
	pterm.Println("  • The SQLPilot server is not running")
	pterm.Println("  • Wrong server address or port")
	pterm.Println()
}

func showSSLHints() {
	pterm.Println("Cannot establish a secure connection. Try:")
	pterm.Println("  • Check your system date and time")
	pterm.Println("  • Verify network proxy settings")
	pterm.Println()
}

func showServerHints() {
	pterm.Println("The SQLPilot server encountered an internal error.")
	pterm.Println("Check the server logs; the request can be retried once it is healthy.")
	pterm.Println()
}
