package dialogflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
)

const (
	component      = "dialogflow"
	defaultBaseURL = "https://dialogflow.googleapis.com"
)

// Config — настройки клиента Dialogflow.
type Config struct {
	BaseURL     string
	ProjectID   string
	AccessToken string
	Language    string
	Timeout     time.Duration
}

// Client вызывает Dialogflow detectIntent через REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

var _ domain.IntentClassifier = (*Client)(nil)

// NewClient создаёт клиент Dialogflow.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

type detectIntentRequest struct {
	QueryInput queryInput `json:"queryInput"`
}

type queryInput struct {
	Text textInput `json:"text"`
}

type textInput struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type detectIntentResponse struct {
	QueryResult struct {
		Intent struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
		Parameters      map[string]any `json:"parameters"`
		FulfillmentText string         `json:"fulfillmentText"`
	} `json:"queryResult"`
}

// DetectIntent классифицирует текст пользователя.
func (c *Client) DetectIntent(ctx context.Context, sessionID, text string) (result domain.IntentResult, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest(component, "detect_intent", c.cfg.ProjectID, start, err)
	}()

	body, err := json.Marshal(detectIntentRequest{
		QueryInput: queryInput{Text: textInput{Text: text, LanguageCode: c.cfg.Language}},
	})
	if err != nil {
		return domain.IntentResult{}, fmt.Errorf("сериализация запроса: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/projects/%s/agent/sessions/%s:detectIntent",
		c.cfg.BaseURL, c.cfg.ProjectID, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.IntentResult{}, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.IntentResult{}, fmt.Errorf("запрос к Dialogflow: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.IntentResult{}, fmt.Errorf("Dialogflow вернул статус %d: %s", resp.StatusCode, payload)
	}

	var parsed detectIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.IntentResult{}, fmt.Errorf("разбор ответа Dialogflow: %w", err)
	}
	return domain.IntentResult{
		Intent:          parsed.QueryResult.Intent.DisplayName,
		Parameters:      parsed.QueryResult.Parameters,
		FulfillmentText: parsed.QueryResult.FulfillmentText,
	}, nil
}
