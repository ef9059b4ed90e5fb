// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

// New creates a backend API implementation over the given transport.
// Returns HTTP client (real backend).
func New(t Doer) API {
	return newHTTP(t)
}
