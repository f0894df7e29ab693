package timeframe

import (
	"fmt"
	"time"
)

// Kind различает варианты временного интервала запроса.
type Kind int

const (
	// KindInstant — конкретный момент, расширяемый до целого дня.
	KindInstant Kind = iota
	// KindRange — явный интервал с началом и концом.
	KindRange
)

// Span — временной интервал запроса расписания.
type Span struct {
	Kind Kind
	// At задан для KindInstant.
	At time.Time
	// From и To заданы для KindRange.
	From time.Time
	To   time.Time
}

// PeriodError означает, что значение периода из параметров интента
// не удалось распознать. Raw хранит исходное значение для показа
// пользователю.
type PeriodError struct {
	Raw any
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("нераспознанный период: %v", e.Raw)
}

var (
	startKeys = []string{"startTime", "startDate", "startDateTime"}
	endKeys   = []string{"endTime", "endDate", "endDateTime"}
)

// Parse извлекает временной интервал из параметров интента.
// Отсутствие параметров времени трактуется как «сейчас».
func Parse(params map[string]any, now time.Time) (Span, error) {
	raw, ok := params["date-time"]
	if !ok || raw == nil || raw == "" {
		raw, ok = params["date-period"]
	}
	if !ok || raw == nil || raw == "" {
		return Span{Kind: KindInstant, At: now}, nil
	}

	switch v := raw.(type) {
	case string:
		at, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return Span{}, &PeriodError{Raw: raw}
		}
		return Span{Kind: KindInstant, At: at}, nil
	case map[string]any:
		// Dialogflow присылает вложенный date_time либо пару границ.
		if nested, ok := v["date_time"].(string); ok {
			at, err := time.Parse(time.RFC3339, nested)
			if err != nil {
				return Span{}, &PeriodError{Raw: raw}
			}
			return Span{Kind: KindInstant, At: at}, nil
		}
		from, okFrom := lookupTime(v, startKeys)
		to, okTo := lookupTime(v, endKeys)
		if !okFrom || !okTo {
			return Span{}, &PeriodError{Raw: raw}
		}
		return Span{Kind: KindRange, From: from, To: to}, nil
	default:
		return Span{}, &PeriodError{Raw: raw}
	}
}

func lookupTime(m map[string]any, keys []string) (time.Time, bool) {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok || s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// Epochs возвращает границы интервала в unix-секундах. Момент
// расширяется до суток от 00:00 до 23:59 в своей временной зоне.
func (s Span) Epochs() (int64, int64) {
	if s.Kind == KindRange {
		return s.From.Unix(), s.To.Unix()
	}
	y, m, d := s.At.Date()
	loc := s.At.Location()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := time.Date(y, m, d, 23, 59, 0, 0, loc)
	return from.Unix(), to.Unix()
}

// Describe возвращает человекочитаемое описание интервала.
func (s Span) Describe() string {
	if s.Kind == KindRange {
		return fmt.Sprintf("Start: %s\nEnd: %s",
			s.From.Format("02.01.2006 15:04"),
			s.To.Format("02.01.2006 15:04"))
	}
	return s.At.Format("02.01.2006")
}
