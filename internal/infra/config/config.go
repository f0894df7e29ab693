package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Telegram struct {
		Token      string `envconfig:"TG_BOT_TOKEN"`
		WebhookURL string `envconfig:"TG_WEBHOOK_URL"`
	} `envconfig:""`

	Dialogflow struct {
		ProjectID   string `envconfig:"DIALOGFLOW_PROJECT_ID"`
		AccessToken string `envconfig:"DIALOGFLOW_ACCESS_TOKEN"`
		Language    string `envconfig:"DIALOGFLOW_LANGUAGE" default:"en"`
	} `envconfig:""`

	Schedule struct {
		// Справочник отдаётся тем же методом, что и события: узкое
		// фиксированное окно без фильтров возвращает полные таблицы.
		ItemsURL  string `envconfig:"SCHEDULE_ITEMS_URL" default:"https://services.tsi.lv/schedule/api/service.asmx/GetLocalizedEvents?from=1676476800&to=1676484900&teachers=&rooms=&groups=&lang=%27en%27"`
		EventsURL string `envconfig:"SCHEDULE_EVENTS_URL" default:"https://services.tsi.lv/schedule/api/service.asmx/GetLocalizedEvents"`
		Language  string `envconfig:"SCHEDULE_LANG" default:"en"`
		// Часовой пояс отображения времени событий.
		DisplayTZ string `envconfig:"SCHEDULE_DISPLAY_TZ" default:"UTC"`
		// Смещение для «сегодня», когда дата в запросе не указана.
		DefaultOffset   string        `envconfig:"SCHEDULE_DEFAULT_OFFSET" default:"+02:00"`
		SnapshotFile    string        `envconfig:"CATALOG_SNAPSHOT_FILE" default:"items.json"`
		RefreshInterval time.Duration `envconfig:"CATALOG_REFRESH_INTERVAL" default:"1h"`
		EventsCacheTTL  time.Duration `envconfig:"EVENTS_CACHE_TTL" default:"2m"`
	} `envconfig:""`

	PGDSN          string `envconfig:"PG_DSN"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
