package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

func refresh(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.session.Current(r.Context())
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]string{"account_ref": id.AccountRef})
}

func (s *Server) handleBindSession(w http.ResponseWriter, r *http.Request) {
	var id core.WalletIdentity
	if err := decode(r, &id); err != nil {
		s.renderError(w, err)
		return
	}

	if err := s.session.Bind(r.Context(), &id); err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]string{"account_ref": id.AccountRef})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(r.Context()); err != nil {
		s.renderError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type methodView struct {
	Method               core.PaymentMethod `json:"method"`
	RequiresVerification bool               `json:"requires_verification"`
}

func (s *Server) handleListMethods(w http.ResponseWriter, r *http.Request) {
	methods := make([]methodView, 0, len(core.PaymentMethods))
	for _, m := range core.PaymentMethods {
		methods = append(methods, methodView{
			Method:               m,
			RequiresVerification: s.wallet.RequiresVerification(m),
		})
	}

	s.render(w, http.StatusOK, map[string]any{"methods": methods})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance := s.wallet.Balance()
	if refresh(r) {
		b, err := s.wallet.FetchBalance(r.Context())
		if err != nil {
			s.renderError(w, err)
			return
		}

		balance = *b
	}

	s.render(w, http.StatusOK, balance)
}

func (s *Server) handleEstimateFee(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		s.renderError(w, twirp.InvalidArgument.Error("invalid amount"))
		return
	}

	t := core.TransactionType(q.Get("type"))
	fee := s.wallet.EstimateFee(t, amount)
	s.render(w, http.StatusOK, map[string]any{
		"type":   t,
		"amount": amount,
		"fee":    fee,
		"total":  amount.Add(fee),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := s.wallet.Transactions()
	if refresh(r) {
		list, err := s.wallet.FetchTransactions(r.Context())
		if err != nil {
			s.renderError(w, err)
			return
		}

		transactions = list
	}

	if transactions == nil {
		transactions = []*core.Transaction{}
	}

	s.render(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (s *Server) handleFindTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.wallet.FindTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, err)
		return
	}

	if tx == nil {
		s.renderError(w, twirp.NotFoundError("transaction not found"))
		return
	}

	s.render(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	intent, err := decodeIntent(r.Body)
	if err != nil {
		s.renderError(w, err)
		return
	}

	tx, err := s.wallet.Execute(r.Context(), intent)
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusCreated, tx)
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone  string          `json:"phone"`
		Amount decimal.Decimal `json:"amount"`
	}

	if err := decode(r, &body); err != nil {
		s.renderError(w, err)
		return
	}

	if err := s.gate.SendCode(r.Context(), body.Phone, body.Amount); err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusAccepted, map[string]any{"state": core.GateStateCodeSent})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}

	if err := decode(r, &body); err != nil {
		s.renderError(w, err)
		return
	}

	if err := s.gate.VerifyCode(r.Context(), body.Phone, body.Code); err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]any{"state": core.GateStateVerified})
}

func (s *Server) handleGateState(w http.ResponseWriter, r *http.Request) {
	state, err := s.gate.State(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		s.renderError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]any{"state": state})
}
