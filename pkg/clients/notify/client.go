package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/steelrolls/internal/config"
	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

// Client delivers statistics reports to an external webhook.
type Client interface {
	SendReport(ctx context.Context, report models.StatisticsReport) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        strings.TrimSpace(cfg.WebhookURL),
	}
}

// ReportPayload is the JSON body posted for every report.
type ReportPayload struct {
	Text   string                  `json:"text"`
	Report models.StatisticsReport `json:"report"`
}

// apiError represents the error payload most webhook receivers return.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendReport posts the report summary and the full statistics.
func (c *WebhookClient) SendReport(ctx context.Context, report models.StatisticsReport) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(ReportPayload{Text: report.Summary, Report: report}).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send report webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("report webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
