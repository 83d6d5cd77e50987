package bcapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bcapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bcapp.BaseEnvironment] env vars to sensible test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BC_SERVICE_NAME: "test"
//   - BC_READINESS_CHECK_PATH: "/health"
//   - BC_OTEL_EXPORTER: "none"
//   - BC_WRITE_TIMEOUT: "30s"
//   - AWS_REGION: "us-east-1"
//   - AWS_ACCESS_KEY_ID: "test"
//   - AWS_SECRET_ACCESS_KEY: "test"
//
// Use the returned [Env] to override individual values:
//
//	bcapptest.SetBaseEnv(t, 18085).FileRoot(t.TempDir()).Locations("GET /=content_file index.html")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BC_PORT", strconv.Itoa(port))
	t.Setenv("BC_SERVICE_NAME", "test")
	t.Setenv("BC_READINESS_CHECK_PATH", "/health")
	t.Setenv("BC_OTEL_EXPORTER", "none")
	t.Setenv("BC_WRITE_TIMEOUT", "30s")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &Env{t: t}
}

// ServiceName overrides BC_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides BC_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_READINESS_CHECK_PATH", path)
	return e
}

// Locations sets BC_LOCATIONS.
func (e *Env) Locations(locs string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_LOCATIONS", locs)
	return e
}

// FileRoot sets BC_FILE_ROOT.
func (e *Env) FileRoot(dir string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_FILE_ROOT", dir)
	return e
}

// MemoryLimit sets BC_MEMORY_LIMIT.
func (e *Env) MemoryLimit(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BC_MEMORY_LIMIT", strconv.Itoa(n))
	return e
}

// WriteTimeout overrides BC_WRITE_TIMEOUT.
func (e *Env) WriteTimeout(d string) *Env {
	e.t.Helper()
	e.t.Setenv("BC_WRITE_TIMEOUT", d)
	return e
}
