package timeframe

import (
	"errors"
	"testing"
	"time"
)

func TestParseInstantString(t *testing.T) {
	span, err := Parse(map[string]any{"date-time": "2024-03-01T10:00:00+02:00"}, time.Now())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if span.Kind != KindInstant {
		t.Fatalf("Kind = %v", span.Kind)
	}

	from, to := span.Epochs()
	loc := time.FixedZone("", 2*3600)
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, loc).Unix()
	wantTo := time.Date(2024, 3, 1, 23, 59, 0, 0, loc).Unix()
	if from != wantFrom || to != wantTo {
		t.Fatalf("Epochs = %d..%d, want %d..%d", from, to, wantFrom, wantTo)
	}
	if got := span.Describe(); got != "01.03.2024" {
		t.Fatalf("Describe = %q", got)
	}
}

func TestParseRange(t *testing.T) {
	span, err := Parse(map[string]any{"date-period": map[string]any{
		"startDate": "2024-03-04T00:00:00+02:00",
		"endDate":   "2024-03-08T23:59:00+02:00",
	}}, time.Now())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if span.Kind != KindRange {
		t.Fatalf("Kind = %v", span.Kind)
	}

	from, to := span.Epochs()
	if from != span.From.Unix() || to != span.To.Unix() {
		t.Fatal("границы интервала должны передаваться как есть")
	}
	want := "Start: 04.03.2024 00:00\nEnd: 08.03.2024 23:59"
	if got := span.Describe(); got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}
}

func TestParseNestedDateTime(t *testing.T) {
	span, err := Parse(map[string]any{"date-time": map[string]any{
		"date_time": "2024-05-10T09:30:00+03:00",
	}}, time.Now())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if span.Kind != KindInstant {
		t.Fatalf("Kind = %v", span.Kind)
	}
	if got := span.Describe(); got != "10.05.2024" {
		t.Fatalf("Describe = %q", got)
	}
}

func TestParseAbsentDefaultsToNow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("", 2*3600))
	span, err := Parse(map[string]any{}, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if span.Kind != KindInstant || !span.At.Equal(now) {
		t.Fatalf("ожидался момент «сейчас», получено %+v", span)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []map[string]any{
		{"date-time": "not a date"},
		{"date-time": 42.0},
		{"date-period": map[string]any{"startDate": "2024-03-04T00:00:00+02:00"}},
		{"date-period": map[string]any{"startDate": "bad", "endDate": "bad"}},
	}
	for _, params := range cases {
		_, err := Parse(params, time.Now())
		var perr *PeriodError
		if !errors.As(err, &perr) {
			t.Fatalf("params %v: ожидалась PeriodError, получено %v", params, err)
		}
		if perr.Raw == nil {
			t.Fatalf("params %v: Raw не заполнен", params)
		}
	}
}

func TestParseEmptyStringFallsThrough(t *testing.T) {
	now := time.Now()
	span, err := Parse(map[string]any{"date-time": ""}, now)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if span.Kind != KindInstant || !span.At.Equal(now) {
		t.Fatalf("пустая строка должна трактоваться как отсутствие периода: %+v", span)
	}
}
