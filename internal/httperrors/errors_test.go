// Copyright (c) 2025 SQLPilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "sqlpilot/cli/internal/errors"
)

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"client timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"net timeout", &net.DNSError{Err: "i/o", IsTimeout: true}, true},
		{"refused", errors.New("connection refused"), false},
		{"server detail mentions timeout", apperrors.Server(500, "canceling statement due to statement timeout"), false},
		{"transport timeout", apperrors.Wrap(apperrors.TransportFailure, "request failed", context.DeadlineExceeded), true},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTimeoutError(tt.err))
		})
	}
}

func TestClassifiers(t *testing.T) {
	assert.True(t, isDNSError(&net.DNSError{Err: "no such host", Name: "api.invalid"}))
	assert.True(t, isConnectionRefusedError(errors.New("dial tcp 127.0.0.1:8000: connection refused")))
	assert.True(t, isSSLError(errors.New("tls: failed to verify certificate")))
	assert.False(t, isSSLError(apperrors.Server(400, "invalid tls setting in DSN")))
}

func TestNotifierFunc(t *testing.T) {
	var gotAction string
	var gotErr error
	n := NotifierFunc(func(action string, err error) {
		gotAction, gotErr = action, err
	})

	want := apperrors.Server(500, "boom")
	n.Notify("running query", want)

	assert.Equal(t, "running query", gotAction)
	assert.Same(t, want, gotErr)

	Discard.Notify("anything", want)
}
