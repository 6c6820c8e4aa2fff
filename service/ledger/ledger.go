package ledger

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
	Token    string
}

func New(cfg Config) core.LedgerService {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &service{client: client}
}

type service struct {
	client *resty.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func check(resp *resty.Response, failure *errorResponse) error {
	if !resp.IsError() {
		return nil
	}

	if failure.Error != "" {
		return errors.New(failure.Error)
	}

	return fmt.Errorf("unexpected status %s", resp.Status())
}

func (s *service) GetBalance(ctx context.Context, accountRef string) (*core.Balance, error) {
	var (
		out     core.Balance
		failure errorResponse
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("account", accountRef).
		SetResult(&out).
		SetError(&failure).
		Get("/accounts/{account}/balance")
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	if err := check(resp, &failure); err != nil {
		return nil, err
	}

	return &out, nil
}

func (s *service) ListTransactions(ctx context.Context, accountRef string) ([]*core.Transaction, error) {
	var (
		out struct {
			Transactions []*core.Transaction `json:"transactions"`
		}
		failure errorResponse
	)

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("account", accountRef).
		SetResult(&out).
		SetError(&failure).
		Get("/accounts/{account}/transactions")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	if err := check(resp, &failure); err != nil {
		return nil, err
	}

	return out.Transactions, nil
}

func (s *service) AppendTransaction(ctx context.Context, accountRef string, transaction *core.Transaction) error {
	var failure errorResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("account", accountRef).
		SetBody(transaction).
		SetError(&failure).
		Post("/accounts/{account}/transactions")
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	return check(resp, &failure)
}
