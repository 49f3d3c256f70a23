package ephemeris

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"astroinsight/application/ports"
	"astroinsight/domain/core/entities"
	apperrors "astroinsight/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Client calls the ephemeris calculation service over HTTP. All calls run
// through a circuit breaker so a degraded calculation backend sheds load
// instead of queueing requests behind timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an ephemeris client for the given service URL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) ports.EphemerisClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ephemeris",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

type transitRequest struct {
	Chart *entities.BirthChart `json:"chart"`
	From  time.Time            `json:"from"`
	Until time.Time            `json:"until"`
}

type transitResponse struct {
	Transits []entities.Transit `json:"transits"`
}

type aspectRequest struct {
	Chart *entities.BirthChart `json:"chart"`
}

type aspectResponse struct {
	Aspects []entities.Aspect `json:"aspects"`
}

// CalculateTransits returns transit events hitting the chart inside [from, until)
func (c *Client) CalculateTransits(ctx context.Context, chart *entities.BirthChart, from, until time.Time) ([]entities.Transit, error) {
	var resp transitResponse
	err := c.post(ctx, "/v1/transits", transitRequest{Chart: chart, From: from, Until: until}, &resp)
	if err != nil {
		return nil, apperrors.NewCalculationError("transit calculation", err)
	}
	return resp.Transits, nil
}

// CalculateAspects returns the aspect grid for the chart's placements
func (c *Client) CalculateAspects(ctx context.Context, chart *entities.BirthChart) ([]entities.Aspect, error) {
	var resp aspectResponse
	err := c.post(ctx, "/v1/aspects", aspectRequest{Chart: chart}, &resp)
	if err != nil {
		return nil, apperrors.NewCalculationError("aspect calculation", err)
	}
	return resp.Aspects, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ephemeris request failed: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
			return nil, fmt.Errorf("ephemeris returned status %d: %s", res.StatusCode, string(snippet))
		}

		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("ephemeris call rejected by circuit breaker", zap.String("path", path))
		}
		return err
	}
	return nil
}
