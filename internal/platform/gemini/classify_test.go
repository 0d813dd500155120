package gemini

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "json status 500", err: errors.New(`{"code":500,"message":"backend error"}`), want: true},
		{name: "json status 503", err: errors.New(`{"code":503,"message":"try later"}`), want: true},
		{name: "internal status", err: errors.New("rpc error: INTERNAL"), want: true},
		{name: "unavailable status", err: errors.New("UNAVAILABLE: overloaded"), want: true},
		{name: "deadline exceeded", err: errors.New("DEADLINE_EXCEEDED"), want: true},
		{name: "plain 500 text", err: errors.New("googleapi: Error 500: internal"), want: true},
		{name: "invalid argument", err: errors.New("INVALID_ARGUMENT: bad request"), want: false},
		{name: "not found", err: errors.New("model not found"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isTransientError(tc.err))
		})
	}
}

func TestIsCredentialError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "invalid api key", err: errors.New("API key not valid. Please pass a valid API key."), want: true},
		{name: "permission denied", err: errors.New("PERMISSION_DENIED: caller lacks access"), want: true},
		{name: "unauthenticated", err: errors.New("UNAUTHENTICATED"), want: true},
		{name: "json status 403", err: errors.New(`{"code":403,"status":"forbidden"}`), want: true},
		{name: "plain 401 text", err: errors.New("googleapi: Error 401: unauthorized"), want: true},
		{name: "server error", err: errors.New(`{"code":500}`), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, isCredentialError(tc.err))
		})
	}
}
