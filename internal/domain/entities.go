package domain

import "maps"

// Category — раздел справочника расписания.
type Category string

const (
	CategoryRooms    Category = "rooms"
	CategoryGroups   Category = "groups"
	CategoryTeachers Category = "teachers"
)

// CatalogSnapshot — снимок справочника: идентификатор → отображаемое имя.
// Идентификаторы уникальны внутри раздела, имена могут повторяться.
type CatalogSnapshot struct {
	Rooms    map[string]string `json:"rooms"`
	Groups   map[string]string `json:"groups"`
	Teachers map[string]string `json:"teachers"`
}

// Empty сообщает, что снимок не содержит ни одной записи.
func (s CatalogSnapshot) Empty() bool {
	return len(s.Rooms) == 0 && len(s.Groups) == 0 && len(s.Teachers) == 0
}

// Equal сравнивает снимки по содержимому.
func (s CatalogSnapshot) Equal(other CatalogSnapshot) bool {
	return maps.Equal(s.Rooms, other.Rooms) &&
		maps.Equal(s.Groups, other.Groups) &&
		maps.Equal(s.Teachers, other.Teachers)
}

// Event — одно событие расписания из внешнего API. Идентификаторы
// приведены к строкам при разборе; запись никогда не сохраняется.
type Event struct {
	Start     int64
	RoomIDs   []string
	GroupIDs  []string
	TeacherID string
	Title     string
}

// EventsResult — распакованный ответ API событий. HasEvents различает
// «поле events отсутствует» и «events присутствует, но пуст».
type EventsResult struct {
	Events    []Event
	HasEvents bool
	Message   string
}

// ResolvedQuery — полностью разрешённый запрос к API событий:
// только идентификаторы и границы периода в секундах UTC.
type ResolvedQuery struct {
	From       int64
	To         int64
	GroupIDs   []string
	TeacherIDs []string
	Lang       string
}

// IntentResult — ответ NLU-сервиса на сообщение пользователя.
type IntentResult struct {
	Intent          string
	Parameters      map[string]any
	FulfillmentText string
}
