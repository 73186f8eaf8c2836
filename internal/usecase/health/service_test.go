package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEmbedding struct {
	mode domain.EmbeddingMode
}

func (m *mockEmbedding) Mode() domain.EmbeddingMode { return m.mode }

type mockOracle struct {
	enabled, available bool
}

func (m *mockOracle) Enabled() bool   { return m.enabled }
func (m *mockOracle) Available() bool { return m.available }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockEmbedding{mode: domain.EmbeddingModeModel}, &mockOracle{true, true})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "embedding", "oracle"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockEmbedding{mode: domain.EmbeddingModeModel}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_PseudoEmbeddingDegrades(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockEmbedding{mode: domain.EmbeddingModePseudo}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckFallback {
		t.Errorf("expected embedding %q, got %q", CheckFallback, r.Checks["embedding"])
	}
}

func TestCheck_OracleStates(t *testing.T) {
	tests := []struct {
		name   string
		oracle *mockOracle
		check  CheckResult
		status Status
	}{
		{"disabled", &mockOracle{}, CheckDisabled, Healthy},
		{"down", &mockOracle{enabled: true}, CheckFallback, Degraded},
		{"up", &mockOracle{enabled: true, available: true}, CheckOK, Healthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockDBPinger{}, nil, tt.oracle).Check(context.Background())
			if r.Checks["oracle"] != tt.check {
				t.Errorf("oracle = %q, want %q", r.Checks["oracle"], tt.check)
			}
			if r.Status != tt.status {
				t.Errorf("status = %q, want %q", r.Status, tt.status)
			}
			if _, ok := r.Checks["embedding"]; ok {
				t.Error("nil embedding must not be reported")
			}
		})
	}
}
