package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/pandodao/zilt-wallet/core"
)

type Config struct {
	Endpoint string        `valid:"url,required"`
	Timeout  time.Duration `valid:"required"`
}

// New returns a client of the SMS verification backend.
func New(cfg Config) core.VerificationService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &service{
		client: resty.New().
			SetBaseURL(cfg.Endpoint).
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

type service struct {
	client *resty.Client
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *service) post(ctx context.Context, path string, body any, fallback string) error {
	var failure errorResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&failure).
		Post(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if !resp.IsError() {
		return nil
	}

	switch {
	case failure.Error != "":
		return errors.New(failure.Error)
	case failure.Message != "":
		return errors.New(failure.Message)
	default:
		return errors.New(fallback)
	}
}

func (s *service) SendCode(ctx context.Context, phoneNumber, purpose string) error {
	return s.post(ctx, "/api/send-add-funds-sms", map[string]string{
		"phoneNumber": phoneNumber,
		"amount":      purpose,
	}, "failed to send SMS")
}

func (s *service) CheckCode(ctx context.Context, phoneNumber, code string) error {
	return s.post(ctx, "/api/check-verify", map[string]string{
		"to":   phoneNumber,
		"code": code,
	}, "verification failed")
}
