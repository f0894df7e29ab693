package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	ScheduleRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_requests_total",
		Help: "Общее количество запросов расписания",
	})
	ScheduleRequestsByChat = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_requests_by_chat_total",
		Help: "Количество запросов расписания по чатам",
	}, []string{"chat_id"})
	ScheduleRequestErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_request_errors_total",
		Help: "Ошибки обработки запросов расписания по видам",
	}, []string{"kind"})
	CatalogRefreshTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_refresh_total",
		Help: "Попытки обновления справочника",
	})
	CatalogRefreshErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_refresh_errors_total",
		Help: "Ошибки обновления справочника",
	})
	CatalogRevision = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_revision",
		Help: "Номер текущей ревизии справочника",
	})
	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ScheduleRequestsTotal,
		ScheduleRequestsByChat,
		ScheduleRequestErrors,
		CatalogRefreshTotal,
		CatalogRefreshErrors,
		CatalogRevision,
		BotSendErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncScheduleRequest увеличивает счётчики запросов расписания.
func IncScheduleRequest(chatID int64) {
	ScheduleRequestsTotal.Inc()
	ScheduleRequestsByChat.WithLabelValues(strconv.FormatInt(chatID, 10)).Inc()
}

// IncScheduleError увеличивает счётчик ошибок данного вида.
func IncScheduleError(kind string) {
	ScheduleRequestErrors.WithLabelValues(kind).Inc()
}
