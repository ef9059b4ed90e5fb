// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package models holds the wire types exchanged with the SQLPilot backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConnectionID is an opaque, server-assigned connection identifier.
// The backend currently emits integers; strings are accepted as well.
type ConnectionID string

// String returns the identifier as text.
func (id ConnectionID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ConnectionID) IsZero() bool { return id == "" }

// MarshalJSON encodes canonical unsigned integers as JSON numbers so the
// backend's integer fields accept them, and everything else (including ids
// with leading zeros) as a string.
func (id ConnectionID) MarshalJSON() ([]byte, error) {
	if isDigits(string(id)) {
		if n, err := strconv.ParseUint(string(id), 10, 64); err == nil && strconv.FormatUint(n, 10) == string(id) {
			return []byte(id), nil
		}
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or string.
func (id *ConnectionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ConnectionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("connection id: %w", err)
	}
	*id = ConnectionID(n.String())
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ConnectionSpec is the payload for creating or updating a connection.
// ConnectionURL is opaque to the client apart from local validation.
type ConnectionSpec struct {
	Name          string `json:"name"`
	DBType        string `json:"db_type"`
	ConnectionURL string `json:"connection_url"`
}

// Validate checks the fields the backend requires.
func (s ConnectionSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("connection name is required")
	}
	if strings.TrimSpace(s.ConnectionURL) == "" {
		return fmt.Errorf("connection url is required")
	}
	if strings.TrimSpace(s.DBType) == "" {
		return fmt.Errorf("database type is required")
	}
	return nil
}

// Connection is a backend-registered database target.
type Connection struct {
	ID            ConnectionID `json:"id"`
	Name          string       `json:"name"`
	DBType        string       `json:"db_type"`
	ConnectionURL string       `json:"connection_url"`
	CreatedAt     Timestamp    `json:"created_at,omitempty"`
}

// Timestamp decodes RFC 3339 times and the zone-less ISO 8601 form the
// backend emits for naive datetimes, which are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("created_at: unrecognized time %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
