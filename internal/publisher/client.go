package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	config "github.com/maheshrc27/contentflow/configs"
	"github.com/maheshrc27/contentflow/internal/transfer"
	"golang.org/x/oauth2"
)

// Client delivers posts through the external publishing service.
type Client interface {
	Publish(ctx context.Context, req *transfer.PublishRequest) (*transfer.PublishResponse, error)
}

// APIError is a non-2xx answer from the publishing service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("publishing service returned %d: %s", e.StatusCode, e.Message)
}

type client struct {
	http *resty.Client
}

func NewClient(cfg config.Publisher) Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), src)

	r := resty.NewWithClient(httpClient).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &client{http: r}
}

func (c *client) Publish(ctx context.Context, req *transfer.PublishRequest) (*transfer.PublishResponse, error) {
	var (
		out     transfer.PublishResponse
		failure transfer.PublishErrorResponse
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		SetError(&failure).
		Post("/posts")
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("publish request: %w", err)
	}

	if resp.IsError() {
		msg := failure.Error
		if msg == "" {
			msg = failure.Message
		}
		if msg == "" {
			msg = resp.Status()
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return &out, nil
}
