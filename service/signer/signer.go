package signer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/sony/gobreaker"
)

type Config struct {
	Endpoint string        `valid:"url,required"`
	Timeout  time.Duration `valid:"required"`
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
}

// Client talks to the credential provider that builds, signs and submits
// payment artifacts. Both calls are guarded by their own circuit breaker.
type Client struct {
	http    *resty.Client
	sign    *gobreaker.CircuitBreaker
	publish *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func New(logger *slog.Logger, cfg Config) *Client {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}

	logger = logger.With("service", "signer")

	return &Client{
		http: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
		sign:    newBreaker("sign", cfg.MaxFailures, logger),
		publish: newBreaker("submit", cfg.MaxFailures, logger),
		logger:  logger,
	}
}

func newBreaker(name string, maxFailures uint32, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *errorResponse) err(resp *resty.Response) error {
	if e.Error != "" {
		return errors.New(e.Error)
	}

	if e.Message != "" {
		return errors.New(e.Message)
	}

	return fmt.Errorf("unexpected status %s", resp.Status())
}

func (c *Client) CreatePayment(ctx context.Context, req *core.PaymentRequest) (*core.SignedPayment, error) {
	v, err := c.sign.Execute(func() (interface{}, error) {
		var (
			out     core.SignedPayment
			failure errorResponse
		)

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Request-Id", uuid.NewString()).
			SetBody(req).
			SetResult(&out).
			SetError(&failure).
			Post("/payments")
		if err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}

		if resp.IsError() {
			return nil, failure.err(resp)
		}

		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.SignedPayment), nil
}

func (c *Client) Submit(ctx context.Context, artifact string) error {
	_, err := c.publish.Execute(func() (interface{}, error) {
		var failure errorResponse

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Request-Id", uuid.NewString()).
			SetBody(map[string]string{"signed_artifact": artifact}).
			SetError(&failure).
			Post("/submit")
		if err != nil {
			return nil, fmt.Errorf("submit payment: %w", err)
		}

		if resp.IsError() {
			return nil, failure.err(resp)
		}

		return nil, nil
	})

	return err
}

// Signer and Submitter expose the two halves of Client for injection.
func Signer(c *Client) core.SignerService    { return c }
func Submitter(c *Client) core.SubmitService { return c }
