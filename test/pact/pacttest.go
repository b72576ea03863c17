//go:build pact
// +build pact

// Package pacttest holds shared names and paths for the contract tests
// between this service and the external identity provider.
package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ConsumerName = "adoption-api"
	ProviderName = "identity-provider"

	StateTokenActive   = "token pact-active-token is active for user pact-user"
	StateTokenRevoked  = "token pact-revoked-token has been revoked"
	StateAdminToken    = "token pact-admin-token is active with the admin role"
	StateTokenUnknown  = "no token pact-ghost-token exists"
)

const (
	ActiveToken  = "pact-active-token"
	RevokedToken = "pact-revoked-token"
	AdminToken   = "pact-admin-token"
	GhostToken   = "pact-ghost-token"

	ActiveUserID = "pact-user"
	AdminUserID  = "pact-admin"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
