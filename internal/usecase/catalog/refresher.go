package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
)

// Refresher периодически обновляет справочник из внешнего API,
// сохраняет снимок на диск и синхронизирует список групп в БД.
type Refresher struct {
	feed   domain.CatalogFeed
	store  *Store
	groups domain.GroupDirectory
	path   string
	log    zerolog.Logger
}

// NewRefresher создаёт Refresher. groups может быть nil, если
// синхронизация списка групп не нужна.
func NewRefresher(feed domain.CatalogFeed, store *Store, groups domain.GroupDirectory, path string, logger zerolog.Logger) *Refresher {
	return &Refresher{
		feed:   feed,
		store:  store,
		groups: groups,
		path:   path,
		log:    logger,
	}
}

// Refresh выполняет одно обновление справочника.
func (r *Refresher) Refresh(ctx context.Context) error {
	metrics.CatalogRefreshTotal.Inc()

	snap, err := r.feed.FetchCatalog(ctx)
	if err != nil {
		metrics.CatalogRefreshErrors.Inc()
		return fmt.Errorf("загрузка справочника: %w", err)
	}
	if snap.Empty() {
		r.log.Warn().Msg("справочник пришёл пустым, снимок не обновлён")
		return nil
	}
	if !r.store.Replace(snap) {
		r.log.Debug().Msg("справочник без изменений")
		return nil
	}
	metrics.CatalogRevision.Set(float64(r.store.Revision()))
	r.log.Info().
		Int("rooms", len(snap.Rooms)).
		Int("groups", len(snap.Groups)).
		Int("teachers", len(snap.Teachers)).
		Msg("справочник обновлён")

	if err := r.store.SaveFile(r.path); err != nil {
		r.log.Error().Err(err).Str("path", r.path).Msg("не удалось сохранить снимок справочника")
	}
	if r.groups != nil {
		if err := r.groups.ReplaceGroups(ctx, r.store.GroupNames()); err != nil {
			r.log.Error().Err(err).Msg("не удалось обновить список групп в БД")
		}
	}
	return nil
}
