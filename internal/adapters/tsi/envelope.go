package tsi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"tsi-schedule-bot/internal/domain"
)

// payload — полезная нагрузка API после снятия обёртки.
type payload struct {
	Events   *eventsBlock `json:"events"`
	Rooms    table        `json:"rooms"`
	Groups   table        `json:"groups"`
	Teachers table        `json:"teachers"`
	Message  string       `json:"Message"`
}

type eventsBlock struct {
	Values [][]any `json:"values"`
}

type table map[string]string

// decodeEnvelope снимает двойную обёртку ответа API: тело обрамлено
// лишней парой символов и может содержать склейку ")(", внутри лежит
// JSON с полем d, значение которого — ещё раз закодированный JSON.
func decodeEnvelope(raw []byte) ([]byte, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("слишком короткое тело ответа: %d байт", len(raw))
	}
	trimmed := strings.ReplaceAll(string(raw[1:len(raw)-1]), ")(", "")

	var outer struct {
		D string `json:"d"`
	}
	if err := json.Unmarshal([]byte(trimmed), &outer); err != nil {
		return nil, fmt.Errorf("разбор внешней обёртки: %w", err)
	}
	return []byte(outer.D), nil
}

// parsePayload разбирает полезную нагрузку после decodeEnvelope.
func parsePayload(data []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return payload{}, fmt.Errorf("разбор полезной нагрузки: %w", err)
	}
	return p, nil
}

// parseEvents превращает кортежи events.values в события. Кортеж:
// [метка времени, список id аудиторий, список id групп, id преподавателя,
// название]. Некорректные кортежи пропускаются.
func parseEvents(p payload) domain.EventsResult {
	result := domain.EventsResult{Message: p.Message}
	if p.Events == nil {
		return result
	}
	result.HasEvents = true

	for _, row := range p.Events.Values {
		if len(row) < 5 {
			continue
		}
		start, ok := asInt64(row[0])
		if !ok {
			continue
		}
		title, ok := row[4].(string)
		if !ok {
			continue
		}
		ev := domain.Event{
			Start:     start,
			RoomIDs:   asIDList(row[1]),
			GroupIDs:  asIDList(row[2]),
			TeacherID: asID(row[3]),
			Title:     title,
		}
		result.Events = append(result.Events, ev)
	}
	return result
}

// asID приводит значение JSON к строковому идентификатору.
// API присылает id числами.
func asID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatInt(int64(x), 10)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func asIDList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if id := asID(item); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
