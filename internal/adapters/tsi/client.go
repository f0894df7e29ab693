package tsi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
)

const component = "tsi"

// Config — настройки клиента API расписания.
type Config struct {
	ItemsURL  string
	EventsURL string
	Language  string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Client ходит в API расписания TSI. cache опционален: при наличии
// разобранные ответы на одинаковые запросы событий переживают TTL.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      domain.Cache
	log        zerolog.Logger
}

var (
	_ domain.CatalogFeed = (*Client)(nil)
	_ domain.EventsAPI   = (*Client)(nil)
)

// NewClient создаёт клиент API. cache может быть nil.
func NewClient(cfg Config, cache domain.Cache, logger zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache,
		log:        logger,
	}
}

// FetchCatalog запрашивает справочник аудиторий, групп и преподавателей.
// API отдаёт его вместе с событиями узкого временного окна.
func (c *Client) FetchCatalog(ctx context.Context) (domain.CatalogSnapshot, error) {
	raw, err := c.get(ctx, "fetch_catalog", c.cfg.ItemsURL)
	if err != nil {
		return domain.CatalogSnapshot{}, err
	}
	decoded, err := decodeEnvelope(raw)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("ответ справочника: %w", err)
	}
	p, err := parsePayload(decoded)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("ответ справочника: %w", err)
	}
	return domain.CatalogSnapshot{
		Rooms:    p.Rooms,
		Groups:   p.Groups,
		Teachers: p.Teachers,
	}, nil
}

// FetchEvents запрашивает события по разрешённому запросу.
func (c *Client) FetchEvents(ctx context.Context, q domain.ResolvedQuery) (domain.EventsResult, error) {
	lang := q.Lang
	if lang == "" {
		lang = c.cfg.Language
	}

	// API ожидает списки id в одинарных кавычках и пустой параметр rooms.
	params := url.Values{}
	params.Set("groups", quoteIDs(q.GroupIDs))
	params.Set("teachers", quoteIDs(q.TeacherIDs))
	params.Set("rooms", "")
	params.Set("lang", "'"+lang+"'")
	params.Set("from", strconv.FormatInt(q.From, 10))
	params.Set("to", strconv.FormatInt(q.To, 10))

	cacheKey := "events:" + params.Encode()
	if c.cache != nil {
		if cached, err := c.cache.Get(cacheKey); err == nil {
			if p, err := parsePayload(cached); err == nil {
				c.log.Debug().Str("key", cacheKey).Msg("события из кэша")
				return parseEvents(p), nil
			}
		}
	}

	raw, err := c.get(ctx, "fetch_events", c.cfg.EventsURL+"?"+params.Encode())
	if err != nil {
		return domain.EventsResult{}, err
	}
	decoded, err := decodeEnvelope(raw)
	if err != nil {
		return domain.EventsResult{}, fmt.Errorf("ответ событий: %w", err)
	}
	p, err := parsePayload(decoded)
	if err != nil {
		return domain.EventsResult{}, fmt.Errorf("ответ событий: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, decoded, c.cfg.CacheTTL); err != nil {
			c.log.Warn().Err(err).Msg("не удалось закэшировать события")
		}
	}
	return parseEvents(p), nil
}

func (c *Client) get(ctx context.Context, operation, rawURL string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest(component, operation, hostOf(rawURL), start, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("создание запроса: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос к API расписания: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API расписания вернуло статус %d", resp.StatusCode)
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("чтение ответа: %w", err)
	}
	return body, nil
}

func quoteIDs(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return "'" + strings.Join(ids, ",") + "'"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Host
}
