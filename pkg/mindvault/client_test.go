package mindvault

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/mindvault/internal/domain"
)

func TestNew_RequiresRedis(t *testing.T) {
	_, err := New(context.Background())
	if err == nil || !strings.Contains(err.Error(), "WithRedis") {
		t.Errorf("err = %v, want missing address error", err)
	}
}

func TestNew_RejectsBadDimensions(t *testing.T) {
	_, err := New(context.Background(), WithRedis("localhost:6379", ""), WithVectorDimensions(0))
	if err == nil || !strings.Contains(err.Error(), "dimensions") {
		t.Errorf("err = %v, want dimensions error", err)
	}
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	ist, _ := time.LoadLocation("Asia/Kolkata")
	for _, o := range []Option{
		WithRedis("redis:6379", "pw"),
		WithKeyPrefix("test:"),
		WithCandidateCap(50),
		WithVectorDimensions(8),
		WithEmbeddingTimeout(2 * time.Second),
		WithOracle(&stubOracle{}, 0),
		WithRelevanceThreshold(0.3),
		WithLocation(ist),
		WithLocation(nil),
	} {
		o.apply(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.addrs[0] != "redis:6379" || cfg.password != "pw" {
		t.Errorf("redis = %v/%q", cfg.addrs, cfg.password)
	}
	if cfg.keyPrefix != "test:" || cfg.candidateCap != 50 || cfg.vectorDimensions != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.embedTimeout != 2*time.Second {
		t.Errorf("embed timeout = %v, want 2s", cfg.embedTimeout)
	}
	if cfg.oracle == nil || cfg.oracleTimeout != 5*time.Second {
		t.Errorf("oracle timeout = %v, want default 5s", cfg.oracleTimeout)
	}
	if cfg.threshold != 0.3 {
		t.Errorf("threshold = %v", cfg.threshold)
	}
	if cfg.location != ist {
		t.Errorf("location = %v, want Asia/Kolkata", cfg.location)
	}
}

// --- Adapters ---

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: []float32{1, 0}, PromptTokens: 3, TotalTokens: 3}, nil
}

type stubOracle struct {
	got OracleRequest
}

func (s *stubOracle) Complete(_ context.Context, req OracleRequest) (OracleResponse, error) {
	s.got = req
	return OracleResponse{Text: `{"type":"link"}`, TotalTokens: 12}, nil
}

func TestEmbedderAdapter(t *testing.T) {
	a := &embedderAdapter{inner: &stubEmbedder{}}
	r, err := a.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode != domain.EmbeddingModeModel || len(r.Embedding) != 2 || r.TotalTokens != 3 {
		t.Errorf("result = %+v", r)
	}

	boom := errors.New("quota")
	a = &embedderAdapter{inner: &stubEmbedder{err: boom}}
	if _, err := a.Embed(context.Background(), "hello"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped quota error", err)
	}
}

func TestOracleAdapter(t *testing.T) {
	stub := &stubOracle{}
	a := &oracleAdapter{inner: stub}
	r, err := a.Complete(context.Background(), domain.OracleRequest{Prompt: "classify", ImageURL: "https://i.io/a.png"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.got.Prompt != "classify" || stub.got.ImageURL != "https://i.io/a.png" {
		t.Errorf("forwarded = %+v", stub.got)
	}
	if r.TotalTokens != 12 || !strings.Contains(r.Text, "link") {
		t.Errorf("response = %+v", r)
	}
}

// --- Observer ---

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	start := time.Now()
	obs.observe("search", "alice", start, nil)
	obs.observe("search", "alice", start, errors.New("boom"))
	obs.searched("semantic", 4)

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(obs.metrics.results); n != 1 {
		t.Errorf("results series = %d, want 1", n)
	}
}

func TestObserver_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	b, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if a.metrics.operations != b.metrics.operations {
		t.Error("second observer must reuse the registered collectors")
	}
}

func TestObserver_NilIsNoop(t *testing.T) {
	var obs *observer
	obs.observe("get", "alice", time.Now(), nil)
	obs.searched("recent", 0)
}
