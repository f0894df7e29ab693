package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/adapters/bot"
	"tsi-schedule-bot/internal/adapters/dialogflow"
	"tsi-schedule-bot/internal/adapters/repo"
	"tsi-schedule-bot/internal/adapters/tsi"
	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/cache"
	"tsi-schedule-bot/internal/infra/config"
	"tsi-schedule-bot/internal/infra/db"
	infrahttp "tsi-schedule-bot/internal/infra/http"
	"tsi-schedule-bot/internal/infra/log"
	"tsi-schedule-bot/internal/infra/metrics"
	"tsi-schedule-bot/internal/usecase/catalog"
	"tsi-schedule-bot/internal/usecase/resolve"
	"tsi-schedule-bot/internal/usecase/schedule"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("миграции не применились")
	}

	var eventsCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		eventsCache = cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	repoAdapter := repo.NewPostgres(pool)

	tsiClient := tsi.NewClient(tsi.Config{
		ItemsURL:  cfg.Schedule.ItemsURL,
		EventsURL: cfg.Schedule.EventsURL,
		Language:  cfg.Schedule.Language,
		CacheTTL:  cfg.Schedule.EventsCacheTTL,
	}, cacheOrNil(eventsCache), logger)

	store := catalog.NewStore()
	if err := store.LoadFile(cfg.Schedule.SnapshotFile); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Schedule.SnapshotFile).Msg("снимок справочника не загружен")
	}

	refresher := catalog.NewRefresher(tsiClient, store, repoAdapter, cfg.Schedule.SnapshotFile, logger)
	if err := refresher.Refresh(ctx); err != nil {
		logger.Error().Err(err).Msg("первичное обновление справочника не удалось")
	}

	display, err := time.LoadLocation(cfg.Schedule.DisplayTZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.Schedule.DisplayTZ).Msg("неизвестная временная зона")
	}
	defaultOffset, err := parseOffset(cfg.Schedule.DefaultOffset)
	if err != nil {
		logger.Fatal().Err(err).Str("offset", cfg.Schedule.DefaultOffset).Msg("некорректное смещение по умолчанию")
	}

	resolver := resolve.NewResolver(store)
	scheduleService := schedule.NewService(store, resolver, repoAdapter, tsiClient, display, defaultOffset, cfg.Schedule.Language, logger)

	classifier := dialogflow.NewClient(dialogflow.Config{
		ProjectID:   cfg.Dialogflow.ProjectID,
		AccessToken: cfg.Dialogflow.AccessToken,
		Language:    cfg.Dialogflow.Language,
	}, logger)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	if cfg.Telegram.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.Telegram.WebhookURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("некорректный URL вебхука")
		}
		if _, err := botAPI.Request(wh); err != nil {
			logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
		}
	}

	h := bot.NewHandler(botAPI, logger, classifier, scheduleService, repoAdapter, repoAdapter, store)

	srv := infrahttp.NewServer(logger)
	srv.Router.Post("/bot/webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.HandleUpdate(r.Context(), update)
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	go runRefreshLoop(ctx, logger, refresher, cfg.Schedule.RefreshInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

// cacheOrNil избегает непустого интерфейса поверх nil-указателя.
func cacheOrNil(c *cache.RedisCache) domain.Cache {
	if c == nil {
		return nil
	}
	return c
}

// runRefreshLoop обновляет справочник по расписанию и пишет heartbeat.
func runRefreshLoop(ctx context.Context, logger zerolog.Logger, refresher *catalog.Refresher, interval time.Duration) {
	refresh := time.NewTicker(interval)
	defer refresh.Stop()
	heartbeat := time.NewTicker(time.Minute)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			if err := refresher.Refresh(ctx); err != nil {
				logger.Error().Err(err).Msg("обновление справочника не удалось")
			}
		case <-heartbeat.C:
			logger.Debug().Time("now", time.Now()).Msg("heartbeat")
		}
	}
}

// parseOffset разбирает смещение вида "+02:00" в фиксированную зону.
func parseOffset(offset string) (*time.Location, error) {
	t, err := time.Parse("-07:00", offset)
	if err != nil {
		return nil, fmt.Errorf("разбор смещения %q: %w", offset, err)
	}
	return t.Location(), nil
}
