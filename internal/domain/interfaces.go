package domain

import (
	"context"
	"time"
)

// CatalogFeed отдаёт свежий снимок справочника расписания.
type CatalogFeed interface {
	FetchCatalog(ctx context.Context) (CatalogSnapshot, error)
}

// EventsAPI выполняет запрос событий по разрешённому фильтру.
type EventsAPI interface {
	FetchEvents(ctx context.Context, q ResolvedQuery) (EventsResult, error)
}

// IntentClassifier классифицирует свободный текст пользователя.
// Для ядра это чёрный ящик: интент, мешок параметров и готовый ответ.
type IntentClassifier interface {
	DetectIntent(ctx context.Context, sessionID, text string) (IntentResult, error)
}

// StudentRepo хранит привязку чата к учебной группе.
type StudentRepo interface {
	// Group возвращает сохранённую группу или пустую строку.
	Group(ctx context.Context, chatID int64) (string, error)
	SetGroup(ctx context.Context, chatID int64, group string) error
}

// GroupDirectory — зеркало списка групп для подсказок при выборе.
type GroupDirectory interface {
	ReplaceGroups(ctx context.Context, names []string) error
	SearchGroups(ctx context.Context, term string) ([]string, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
