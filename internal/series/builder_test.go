package series

import (
	"errors"
	"testing"
)

// -------------------------
// Happy path
// -------------------------

func TestBuild_SinglePoint(t *testing.T) {
	raw := []byte(`[{"DateTime":"2024-01-01T12:00:00+02:00","PriceWithTax":5.0}]`)

	s, err := Build(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 point, got %d", s.Len())
	}

	p := s.Points()[0]
	if p.EurPerMWh != 50.0 {
		t.Fatalf("expected 50.0 EUR/MWh after conversion, got %v", p.EurPerMWh)
	}
	if p.HourOfDay() != 12 {
		t.Fatalf("expected hour 12, got %d", p.HourOfDay())
	}
	if p.DayOfYear() != 1 {
		t.Fatalf("expected day of year 1, got %d", p.DayOfYear())
	}
}

func TestBuild_EmptyArray(t *testing.T) {
	s, err := Build([]byte(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty series, got %d points", s.Len())
	}
}

func TestBuild_NegativePrice(t *testing.T) {
	// negative spot prices happen on windy days and are perfectly valid
	raw := []byte(`[{"DateTime":"2024-01-01T03:00:00+02:00","PriceWithTax":-0.41}]`)

	s, err := Build(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Points()[0].EurPerMWh; got != -4.1 {
		t.Fatalf("expected -4.1 EUR/MWh, got %v", got)
	}
}

func TestBuild_KeepsApiOrder(t *testing.T) {
	raw := []byte(`[
		{"DateTime":"2024-01-01T14:00:00+02:00","PriceWithTax":2.0},
		{"DateTime":"2024-01-01T12:00:00+02:00","PriceWithTax":1.0}
	]`)

	s, err := Build(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ordering is the consumer's business, the builder keeps the API order
	if got := s.Points()[0].HourOfDay(); got != 14 {
		t.Fatalf("expected first point to keep hour 14, got %d", got)
	}
}

// -------------------------
// Malformed payloads
// -------------------------

func TestBuild_NotAnArray(t *testing.T) {
	// "null" is special: encoding/json silently decodes it into a nil slice
	for _, raw := range []string{`{}`, `"text"`, `42`, `null`, ` null `, `[{"DateTime":`} {
		s, err := Build([]byte(raw))
		if !errors.Is(err, ErrMalformedPayload) {
			t.Fatalf("payload %q: expected ErrMalformedPayload, got %v", raw, err)
		}
		if s.Len() != 0 {
			t.Fatalf("payload %q: expected no series on malformed payload, got %d points", raw, s.Len())
		}
	}
}

func TestBuild_MalformedElement(t *testing.T) {
	cases := map[string]string{
		"element not an object": `[5]`,
		"null element":          `[null]`,
		"missing DateTime":      `[{"PriceWithTax":5.0}]`,
		"missing PriceWithTax":  `[{"DateTime":"2024-01-01T12:00:00+02:00"}]`,
		"price wrong type":      `[{"DateTime":"2024-01-01T12:00:00+02:00","PriceWithTax":"5"}]`,
		"datetime wrong type":   `[{"DateTime":12,"PriceWithTax":5.0}]`,
	}

	for name, raw := range cases {
		if _, err := Build([]byte(raw)); !errors.Is(err, ErrMalformedElement) {
			t.Fatalf("%s: expected ErrMalformedElement, got %v", name, err)
		}
	}
}

func TestBuild_AbortsOnFirstBadElement(t *testing.T) {
	// a bad element rejects the whole payload, no partial series
	raw := []byte(`[
		{"DateTime":"2024-01-01T12:00:00+02:00","PriceWithTax":5.0},
		{"DateTime":"2024-01-01T13:00:00+02:00"}
	]`)

	s, err := Build(raw)
	if !errors.Is(err, ErrMalformedElement) {
		t.Fatalf("expected ErrMalformedElement, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no partial series, got %d points", s.Len())
	}
}

// -------------------------
// Unparseable timestamps
// -------------------------

func TestBuild_UnparseableTimestampIsNotFatal(t *testing.T) {
	raw := []byte(`[
		{"DateTime":"not-a-date","PriceWithTax":3.0},
		{"DateTime":"2024-01-01T15:00:00+02:00","PriceWithTax":4.0}
	]`)

	s, err := Build(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", s.Len())
	}

	bad := s.Points()[0]
	if bad.TimeKnown {
		t.Fatalf("expected TimeKnown=false for unparseable timestamp")
	}
	if bad.HourOfDay() != 0 || bad.DayOfYear() != -1 {
		t.Fatalf("expected sentinel hour 0 / day -1, got %d / %d", bad.HourOfDay(), bad.DayOfYear())
	}
	if bad.EurPerMWh != 30.0 {
		t.Fatalf("price of the sentinel point must survive, got %v", bad.EurPerMWh)
	}
	if s.UnknownTimeCount() != 1 {
		t.Fatalf("expected 1 unknown-time point, got %d", s.UnknownTimeCount())
	}
}
