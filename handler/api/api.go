package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oxtoacart/bpool"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
)

type Wallet interface {
	Execute(ctx context.Context, intent core.Intent) (*core.Transaction, error)
	FindTransaction(ctx context.Context, id string) (*core.Transaction, error)
	Balance() core.Balance
	Transactions() []*core.Transaction
	FetchBalance(ctx context.Context) (*core.Balance, error)
	FetchTransactions(ctx context.Context) ([]*core.Transaction, error)
	EstimateFee(t core.TransactionType, amount decimal.Decimal) decimal.Decimal
	RequiresVerification(method core.PaymentMethod) bool
}

type Gate interface {
	SendCode(ctx context.Context, phone string, amount decimal.Decimal) error
	VerifyCode(ctx context.Context, phone, code string) error
	State(ctx context.Context, phone string) (core.GateState, error)
}

type Session interface {
	core.IdentitySession
	Bind(ctx context.Context, id *core.WalletIdentity) error
	Logout(ctx context.Context) error
}

func New(wallet Wallet, gate Gate, session Session, logger *slog.Logger) *Server {
	return &Server{
		wallet:  wallet,
		gate:    gate,
		session: session,
		logger:  logger.With("server", "api"),
		buffers: bpool.NewBufferPool(64),
	}
}

// Server is the JSON API the presentation layer talks to. Errors are written
// in the twirp wire format.
type Server struct {
	wallet  Wallet
	gate    Gate
	session Session
	logger  *slog.Logger
	buffers *bpool.BufferPool
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleCurrentSession)
		r.Post("/", s.handleBindSession)
		r.Delete("/", s.handleLogout)
	})

	r.Get("/methods", s.handleListMethods)
	r.Get("/balance", s.handleBalance)
	r.Get("/fees", s.handleEstimateFee)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Post("/", s.handleCreateTransaction)
		r.Get("/{id}", s.handleFindTransaction)
	})

	r.Route("/verifications", func(r chi.Router) {
		r.Post("/", s.handleSendCode)
		r.Post("/check", s.handleVerifyCode)
		r.Get("/{phone}", s.handleGateState)
	})

	return r
}
