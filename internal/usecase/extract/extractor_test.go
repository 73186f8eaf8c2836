package extract

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/item"
	"github.com/kailas-cloud/mindvault/internal/domain/search/query"
)

var today = time.Date(2024, 11, 10, 15, 30, 0, 0, time.UTC)

// --- Mocks ---

type mockOracle struct {
	text  string
	err   error
	calls int
	last  domain.OracleRequest
}

func (m *mockOracle) Complete(_ context.Context, req domain.OracleRequest) (domain.OracleResponse, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return domain.OracleResponse{}, m.err
	}
	return domain.OracleResponse{Text: m.text, TotalTokens: 42}, nil
}

func newExtractor(o Oracle) *Extractor {
	return New(o, zap.NewNop())
}

// --- Tests ---

func TestExtract_ParsesWrappedJSON(t *testing.T) {
	o := &mockOracle{text: "Sure, here you go:\n```json\n" +
		`{"type":"product","topic":null,"reason":"null","priceRange":[0,"₹3000"],` +
		`"keywords":["headphones","yesterday","2024-11-01"],"dateRange":null}` + "\n```"}

	f := newExtractor(o).Extract(context.Background(), "products under ₹3000", today)

	if v, ok := f.Type.Get(); !ok || v != item.TypeProduct {
		t.Errorf("type = %q, %v", v, ok)
	}
	if f.Type.Source() != query.SourceExtracted {
		t.Errorf("source = %q", f.Type.Source())
	}
	if f.Topic.IsSet() || f.Reason.IsSet() || f.Dates.IsSet() {
		t.Errorf("null fields must stay unset: %+v", f)
	}
	p, ok := f.Price.Get()
	if !ok || p.Min != 0 || p.Max != 3000 {
		t.Errorf("price = %+v, %v", p, ok)
	}
	kw := f.Keywords.Value()
	if len(kw) != 1 || kw[0] != "headphones" {
		t.Errorf("keywords = %v, dates must be dropped", kw)
	}
	if o.last.Purpose != domain.OraclePurposeFilter {
		t.Errorf("purpose = %q", o.last.Purpose)
	}
	if !strings.Contains(o.last.Prompt, "2024-11-10") || !strings.Contains(o.last.Prompt, "products under ₹3000") {
		t.Error("prompt must carry today's date and the query")
	}
}

func TestExtract_AllNullIsEmpty(t *testing.T) {
	o := &mockOracle{text: `{"type":null,"topic":"none","reason":"","priceRange":null,"keywords":[],"dateRange":{"from":null,"to":null}}`}

	f := newExtractor(o).Extract(context.Background(), "something", today)
	if !f.IsEmpty() {
		t.Errorf("expected empty filter, got %v", f.Describe())
	}
}

func TestExtract_OpenPriceAndCommaKeywords(t *testing.T) {
	o := &mockOracle{text: `{"priceRange":[500,null],"keywords":"shoes, running ,","reason":"To Buy Later"}`}

	f := newExtractor(o).Extract(context.Background(), "running shoes over 500", today)

	p, ok := f.Price.Get()
	if !ok || p.Min != 500 || !math.IsInf(p.Max, 1) {
		t.Errorf("price = %+v, %v", p, ok)
	}
	kw := f.Keywords.Value()
	if len(kw) != 2 || kw[0] != "shoes" || kw[1] != "running" {
		t.Errorf("keywords = %v", kw)
	}
	if f.Reason.Value() != item.ReasonBuyLater {
		t.Errorf("reason = %q", f.Reason.Value())
	}
}

func TestExtract_InvalidTypeIgnored(t *testing.T) {
	o := &mockOracle{text: `{"type":"spaceship","topic":"AI"}`}

	f := newExtractor(o).Extract(context.Background(), "AI spaceship", today)
	if f.Type.IsSet() {
		t.Errorf("unknown type must be dropped, got %q", f.Type.Value())
	}
	if f.Topic.Value() != "AI" {
		t.Errorf("topic = %q", f.Topic.Value())
	}
}

func TestExtract_OracleDates(t *testing.T) {
	o := &mockOracle{text: `{"dateRange":{"from":"2024-10-01","to":"2024-10-31"}}`}

	f := newExtractor(o).Extract(context.Background(), "saved in october", today)

	d, ok := f.Dates.Get()
	if !ok || d.From == nil || d.To == nil {
		t.Fatalf("dates = %+v, %v", d, ok)
	}
	if got := d.From.Format(time.DateOnly); got != "2024-10-01" {
		t.Errorf("from = %s", got)
	}
	if want := time.Date(2024, 10, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC); !d.To.Equal(want) {
		t.Errorf("to = %s, want end of day", d.To)
	}
}

func TestExtract_RelativePhraseOverridesOracle(t *testing.T) {
	o := &mockOracle{text: `{"type":"video","dateRange":{"from":"2024-01-01","to":"2024-01-02"}}`}

	f := newExtractor(o).Extract(context.Background(), "videos from this week", today)

	d := f.Dates.Value()
	if d.From == nil || d.From.Format(time.DateOnly) != "2024-11-03" {
		t.Errorf("from = %v, want 2024-11-03", d.From)
	}
	if d.To == nil || d.To.Format(time.DateOnly) != "2024-11-10" {
		t.Errorf("to = %v, want 2024-11-10", d.To)
	}
	if f.Dates.Source() != query.SourceExtracted {
		t.Errorf("source = %q", f.Dates.Source())
	}
}

func TestExtract_Yesterday(t *testing.T) {
	o := &mockOracle{text: `{"dateRange":null}`}

	d := newExtractor(o).Extract(context.Background(), "what did I save yesterday", today).Dates.Value()
	if d.From == nil || d.To == nil {
		t.Fatalf("dates = %+v", d)
	}
	if d.From.Format(time.DateOnly) != "2024-11-09" || d.To.Format(time.DateOnly) != "2024-11-09" {
		t.Errorf("range = %s..%s, want 2024-11-09", d.From, d.To)
	}
}

func TestExtract_MalformedFallsBackToHeuristics(t *testing.T) {
	o := &mockOracle{text: "The user wants type: video about cooking"}
	e := newExtractor(o)

	f := e.Extract(context.Background(), "cooking videos", today)
	if f.Type.Value() != item.TypeVideo {
		t.Errorf("type = %q, want guessed video", f.Type.Value())
	}
	if !e.malformed.Load() {
		t.Error("malformed flag must be raised")
	}

	o.text = `{"type":"video"}`
	e.Extract(context.Background(), "cooking videos", today)
	if e.malformed.Load() {
		t.Error("malformed flag must clear after a good reply")
	}
}

func TestExtract_OracleErrorIsEmpty(t *testing.T) {
	o := &mockOracle{err: errors.New("connection refused")}

	f := newExtractor(o).Extract(context.Background(), "videos from this week", today)
	if !f.IsEmpty() {
		t.Errorf("unavailable oracle must yield an empty filter, got %v", f.Describe())
	}
}

func TestExtract_NoOracleOrQuery(t *testing.T) {
	if f := newExtractor(nil).Extract(context.Background(), "anything", today); !f.IsEmpty() {
		t.Error("nil oracle must yield an empty filter")
	}

	o := &mockOracle{text: `{"type":"video"}`}
	if f := newExtractor(o).Extract(context.Background(), "   ", today); !f.IsEmpty() {
		t.Error("blank query must yield an empty filter")
	}
	if o.calls != 0 {
		t.Errorf("oracle called %d times for a blank query", o.calls)
	}
}
