package payment

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/pandodao/zilt-wallet/service/fee"
	"github.com/pandodao/zilt-wallet/service/verification"
	"github.com/pandodao/zilt-wallet/store/challenge"
	"github.com/pandodao/zilt-wallet/store/walletcache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validAddress = "G" + strings.Repeat("ABCDEFGHIJK", 5)

type fakeSession struct {
	id *core.WalletIdentity
}

func (f *fakeSession) Current(context.Context) (*core.WalletIdentity, error) {
	if f.id == nil {
		return nil, core.ErrNotAuthenticated
	}

	return f.id, nil
}

type fakeGate struct {
	mux      sync.Mutex
	verified map[string]decimal.Decimal
	consumed []string
}

func (f *fakeGate) Consume(_ context.Context, phone string, amount decimal.Decimal) error {
	f.mux.Lock()
	defer f.mux.Unlock()

	if v, ok := f.verified[phone]; ok && v.Equal(amount) {
		delete(f.verified, phone)
		f.consumed = append(f.consumed, phone)
		return nil
	}

	return core.ErrNotVerified
}

type fakeSigner struct {
	mux      sync.Mutex
	delay    time.Duration
	err      error
	fee      decimal.NullDecimal
	noID     bool
	requests []*core.PaymentRequest
}

func (f *fakeSigner) CreatePayment(_ context.Context, req *core.PaymentRequest) (*core.SignedPayment, error) {
	time.Sleep(f.delay)

	f.mux.Lock()
	defer f.mux.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}

	n := len(f.requests)
	signed := &core.SignedPayment{
		Artifact:    "artifact-" + string(rune('a'+n)),
		ReportedFee: f.fee,
	}

	if !f.noID {
		signed.ArtifactID = "tx-" + string(rune('a'+n))
	}

	return signed, nil
}

func (f *fakeSigner) calls() int {
	f.mux.Lock()
	defer f.mux.Unlock()

	return len(f.requests)
}

type fakeSubmitter struct {
	mux       sync.Mutex
	err       error
	submitted []string
}

func (f *fakeSubmitter) Submit(_ context.Context, artifact string) error {
	f.mux.Lock()
	defer f.mux.Unlock()

	if f.err != nil {
		return f.err
	}

	f.submitted = append(f.submitted, artifact)
	return nil
}

// ledgerHold parks ListTransactions until release is closed.
type ledgerHold struct {
	entered chan struct{}
	release chan struct{}
}

type fakeLedger struct {
	hold         *ledgerHold
	mux          sync.Mutex
	balance      decimal.Decimal
	transactions []*core.Transaction
	appendErr    error
	readErr      error
	appended     []*core.Transaction
}

func (f *fakeLedger) GetBalance(context.Context, string) (*core.Balance, error) {
	f.mux.Lock()
	defer f.mux.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}

	return &core.Balance{Amount: f.balance, Currency: "USDC"}, nil
}

func (f *fakeLedger) ListTransactions(context.Context, string) ([]*core.Transaction, error) {
	if f.hold != nil {
		f.hold.entered <- struct{}{}
		<-f.hold.release
	}

	f.mux.Lock()
	defer f.mux.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}

	return append([]*core.Transaction(nil), f.transactions...), nil
}

func (f *fakeLedger) AppendTransaction(_ context.Context, _ string, tx *core.Transaction) error {
	f.mux.Lock()
	defer f.mux.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}

	f.appended = append(f.appended, tx)
	return nil
}

type fakeHistory struct {
	transactions map[string]*core.Transaction
}

func (f *fakeHistory) Save(context.Context, string, []*core.Transaction) error { return nil }

func (f *fakeHistory) List(context.Context, string, int) ([]*core.Transaction, error) {
	return nil, nil
}

func (f *fakeHistory) Find(_ context.Context, accountRef, id string) (*core.Transaction, error) {
	if tx, ok := f.transactions[accountRef+"/"+id]; ok {
		return tx, nil
	}

	return nil, sql.ErrNoRows
}

func (f *fakeHistory) Delete(context.Context, string) error { return nil }

type fixture struct {
	svc       *Service
	session   *fakeSession
	gate      *fakeGate
	signer    *fakeSigner
	submitter *fakeSubmitter
	ledger    *fakeLedger
	history   *fakeHistory
	cache     *walletcache.Cache
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()

	f := &fixture{
		session:   &fakeSession{id: &core.WalletIdentity{AccountRef: "GACCOUNT", SigningKeyRef: "key-1"}},
		gate:      &fakeGate{verified: map[string]decimal.Decimal{}},
		signer:    &fakeSigner{},
		submitter: &fakeSubmitter{},
		ledger:    &fakeLedger{},
		history:   &fakeHistory{transactions: map[string]*core.Transaction{}},
		cache:     walletcache.New("USDC"),
	}

	f.cache.SetBalance(core.Balance{Amount: decimal.RequireFromString(balance), Currency: "USDC"})

	f.svc = f.newService(f.gate)
	return f
}

func (f *fixture) newService(gate core.VerificationGate) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(
		f.session,
		gate,
		fee.New(fee.DefaultConfig()),
		f.signer,
		f.submitter,
		f.ledger,
		f.cache,
		f.history,
		NewMetrics(nil),
		logger,
		Config{Currency: "USDC", AddressPrefix: "G", AddressLength: 56},
	)
}

func (f *fixture) balance() decimal.Decimal {
	return f.cache.Balance().Amount
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSend(t *testing.T) {
	f := newFixture(t, "1000")

	tx, err := f.svc.Send(context.Background(), dec("50"), validAddress, "lunch")
	require.NoError(t, err)

	assert.Equal(t, core.TransactionTypeTransfer, tx.Type)
	assert.True(t, tx.Amount.Equal(dec("50")))
	require.True(t, tx.Fee.Valid)
	assert.True(t, tx.Fee.Decimal.Equal(dec("0.05")))
	assert.Equal(t, core.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, validAddress, tx.CounterpartyRef)
	assert.Equal(t, "lunch", tx.Note)
	assert.Equal(t, "USDC", tx.Currency)

	assert.True(t, f.balance().Equal(dec("949.95")), "balance %s", f.balance())
	assert.Len(t, f.submitter.submitted, 1)
	assert.Len(t, f.ledger.appended, 1)

	got, ok := f.svc.GetTransaction(tx.ID)
	require.True(t, ok)
	assert.Equal(t, tx, got)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	f := newFixture(t, "100")

	_, err := f.svc.Withdraw(context.Background(), dec("150"), validAddress)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.Equal(t, 0, f.signer.calls())
	assert.True(t, f.balance().Equal(dec("100")))
	assert.Empty(t, f.svc.Transactions())
}

func TestWithdrawFeeTipsOverBalance(t *testing.T) {
	f := newFixture(t, "100")

	// 100 + 0.2 fee > 100
	_, err := f.svc.Withdraw(context.Background(), dec("100"), validAddress)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.Equal(t, 0, f.signer.calls())
}

func TestWithdrawInvalidAddress(t *testing.T) {
	f := newFixture(t, "100")

	_, err := f.svc.Withdraw(context.Background(), dec("10"), "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, 0, f.signer.calls())
	assert.Empty(t, f.submitter.submitted)
	assert.Empty(t, f.ledger.appended)
}

func TestInvalidAmount(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()

	for _, amount := range []string{"0", "-1"} {
		_, err := f.svc.Withdraw(ctx, dec(amount), validAddress)
		assert.ErrorIs(t, err, core.ErrInvalidAmount)

		_, err = f.svc.Send(ctx, dec(amount), validAddress, "")
		assert.ErrorIs(t, err, core.ErrInvalidAmount)

		_, err = f.svc.Deposit(ctx, dec(amount), core.PaymentMethodCryptoWallet, "")
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
	}

	assert.Equal(t, 0, f.signer.calls())
}

func TestWithdrawReportedFeeIsAuthoritative(t *testing.T) {
	f := newFixture(t, "100")
	f.signer.fee = decimal.NewNullDecimal(dec("0.5"))

	tx, err := f.svc.Withdraw(context.Background(), dec("10"), validAddress)
	require.NoError(t, err)

	assert.True(t, tx.Fee.Decimal.Equal(dec("0.5")))
	assert.True(t, f.balance().Equal(dec("89.5")), "balance %s", f.balance())
}

func TestWithdrawReportedFeeExceedsBalance(t *testing.T) {
	f := newFixture(t, "10.05")
	f.signer.fee = decimal.NewNullDecimal(dec("0.1"))

	_, err := f.svc.Withdraw(context.Background(), dec("10"), validAddress)
	assert.ErrorIs(t, err, core.ErrInsufficientFunds)
	assert.Equal(t, 1, f.signer.calls())
	assert.Empty(t, f.submitter.submitted)
	assert.True(t, f.balance().Equal(dec("10.05")))
}

func TestDepositRequiresVerification(t *testing.T) {
	f := newFixture(t, "0")

	_, err := f.svc.Deposit(context.Background(), dec("50"), core.PaymentMethodEcoCash, "+263771234567")
	assert.ErrorIs(t, err, core.ErrVerification)
	assert.ErrorIs(t, err, core.ErrNotVerified)
	assert.Equal(t, 0, f.signer.calls())
	assert.Empty(t, f.ledger.appended)
	assert.Empty(t, f.svc.Transactions())

	_, err = f.svc.Deposit(context.Background(), dec("50"), core.PaymentMethodMPesa, "")
	assert.ErrorIs(t, err, core.ErrInvalidPhone)
}

func TestDepositVerified(t *testing.T) {
	f := newFixture(t, "10")
	f.gate.verified["+263771234567"] = dec("50")
	f.signer.fee = decimal.NewNullDecimal(dec("0.00001"))

	tx, err := f.svc.Deposit(context.Background(), dec("50"), core.PaymentMethodEcoCash, "+263771234567")
	require.NoError(t, err)

	assert.Equal(t, core.TransactionTypeDeposit, tx.Type)
	assert.Equal(t, "EcoCash", tx.CounterpartyRef)
	assert.True(t, tx.Fee.Decimal.Equal(dec("0.00001")))
	assert.True(t, f.balance().Equal(dec("60")), "fee does not reduce the credit")
	assert.Equal(t, []string{"+263771234567"}, f.gate.consumed)

	// the code is spent
	_, err = f.svc.Deposit(context.Background(), dec("50"), core.PaymentMethodEcoCash, "+263771234567")
	assert.ErrorIs(t, err, core.ErrNotVerified)

	req := f.signer.requests[0]
	assert.Equal(t, "GACCOUNT", req.Destination)
	assert.Equal(t, "key-1", req.SigningKeyRef)
	assert.Equal(t, "EcoCash", req.SourceAsset)
}

func TestDepositDirectCustody(t *testing.T) {
	f := newFixture(t, "5")
	ctx := context.Background()

	first, err := f.svc.Deposit(ctx, dec("20"), core.PaymentMethodCryptoWallet, "")
	require.NoError(t, err)
	assert.False(t, first.Fee.Valid)

	second, err := f.svc.Deposit(ctx, dec("1.5"), core.PaymentMethodCryptoWallet, "")
	require.NoError(t, err)

	assert.True(t, f.balance().Equal(dec("26.5")))
	txs := f.svc.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
	assert.Empty(t, f.gate.consumed)
}

func TestDepositInvalidMethod(t *testing.T) {
	f := newFixture(t, "5")

	_, err := f.svc.Deposit(context.Background(), dec("20"), core.PaymentMethod("PayPal"), "")
	assert.ErrorIs(t, err, core.ErrInvalidMethod)
}

func TestNotAuthenticated(t *testing.T) {
	f := newFixture(t, "100")
	f.session.id = nil
	ctx := context.Background()

	_, err := f.svc.Send(ctx, dec("1"), validAddress, "")
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)

	_, err = f.svc.Deposit(ctx, dec("1"), core.PaymentMethodCryptoWallet, "")
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)

	_, err = f.svc.FetchBalance(ctx)
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)

	assert.Equal(t, 0, f.signer.calls())
}

func TestSigningFailure(t *testing.T) {
	f := newFixture(t, "100")
	f.signer.err = errors.New("timeout")

	_, err := f.svc.Send(context.Background(), dec("1"), validAddress, "")
	assert.ErrorIs(t, err, core.ErrSigning)
	assert.Empty(t, f.submitter.submitted)
	assert.True(t, f.balance().Equal(dec("100")))
}

func TestSubmissionFailure(t *testing.T) {
	f := newFixture(t, "100")
	f.submitter.err = errors.New("tx_insufficient_balance")

	_, err := f.svc.Withdraw(context.Background(), dec("1"), validAddress)
	assert.ErrorIs(t, err, core.ErrSubmission)
	assert.Contains(t, err.Error(), "tx_insufficient_balance")
	assert.Empty(t, f.ledger.appended)
	assert.True(t, f.balance().Equal(dec("100")))
	assert.Empty(t, f.svc.Transactions())
}

func TestPersistenceFailure(t *testing.T) {
	f := newFixture(t, "100")
	f.ledger.appendErr = errors.New("write conflict")

	_, err := f.svc.Send(context.Background(), dec("1"), validAddress, "")
	assert.ErrorIs(t, err, core.ErrPersistence)
	assert.NotErrorIs(t, err, core.ErrSubmission)
	assert.Len(t, f.submitter.submitted, 1)
	assert.True(t, f.balance().Equal(dec("100")))
	assert.Empty(t, f.svc.Transactions())
}

func TestTransactionIDFromArtifact(t *testing.T) {
	f := newFixture(t, "100")
	f.signer.noID = true

	tx, err := f.svc.Send(context.Background(), dec("1"), validAddress, "")
	require.NoError(t, err)

	h := sha256.Sum256([]byte(f.submitter.submitted[0]))
	assert.Equal(t, hex.EncodeToString(h[:]), tx.ID)
}

func TestFetchTransactions(t *testing.T) {
	f := newFixture(t, "0")
	now := time.Now()
	f.ledger.transactions = []*core.Transaction{
		{ID: "old", Type: core.TransactionTypeDeposit, Amount: dec("5"), Status: core.TransactionStatusCompleted, CreatedAt: now.Add(-time.Hour)},
		{ID: "new", Type: core.TransactionTypeTransfer, Amount: dec("1"), Fee: decimal.NewNullDecimal(dec("0.001")), Status: core.TransactionStatusCompleted, CreatedAt: now},
	}

	txs, err := f.svc.FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "new", txs[0].ID)
	assert.Equal(t, "old", txs[1].ID)

	for _, tx := range txs {
		first, ok := f.svc.GetTransaction(tx.ID)
		require.True(t, ok)
		second, ok := f.svc.GetTransaction(tx.ID)
		require.True(t, ok)
		assert.Equal(t, tx, first)
		assert.Equal(t, first, second)
	}
}

func TestFetchBalance(t *testing.T) {
	f := newFixture(t, "1")
	f.ledger.balance = dec("42.5")

	b, err := f.svc.FetchBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(dec("42.5")))
	assert.True(t, f.balance().Equal(dec("42.5")))

	f.ledger.readErr = errors.New("503")
	_, err = f.svc.FetchBalance(context.Background())
	assert.ErrorIs(t, err, core.ErrLedgerUnavailable)
	assert.True(t, f.balance().Equal(dec("42.5")))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, "0")
	f.ledger.balance = dec("7")
	f.ledger.transactions = []*core.Transaction{
		{ID: "a", Type: core.TransactionTypeDeposit, Amount: dec("7"), Status: core.TransactionStatusCompleted, CreatedAt: time.Now()},
	}

	require.NoError(t, f.svc.Refresh(context.Background()))
	assert.True(t, f.balance().Equal(dec("7")))
	_, ok := f.svc.GetTransaction("a")
	assert.True(t, ok)
}

func TestConcurrentWithdrawalsSerialized(t *testing.T) {
	f := newFixture(t, "100")

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Withdraw(context.Background(), dec("60"), validAddress)
		}(i)
	}

	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, core.ErrInsufficientFunds)
			failed++
		}
	}

	assert.Equal(t, 1, failed)
	assert.True(t, f.balance().Equal(dec("39.88")), "balance %s", f.balance())
}

func TestExecute(t *testing.T) {
	f := newFixture(t, "100")
	ctx := context.Background()

	tx, err := f.svc.Execute(ctx, core.SendIntent{Amount: dec("10"), Recipient: validAddress, Note: "rent"})
	require.NoError(t, err)
	assert.Equal(t, core.TransactionTypeTransfer, tx.Type)

	tx, err = f.svc.Execute(ctx, core.WithdrawIntent{Amount: dec("10"), Destination: validAddress})
	require.NoError(t, err)
	assert.Equal(t, core.TransactionTypeWithdrawal, tx.Type)

	tx, err = f.svc.Execute(ctx, core.DepositIntent{Amount: dec("10"), Method: core.PaymentMethodCryptoWallet})
	require.NoError(t, err)
	assert.Equal(t, core.TransactionTypeDeposit, tx.Type)

	// 100 - 10.01 - 10.02 + 10
	assert.True(t, f.balance().Equal(dec("89.97")), "balance %s", f.balance())
}

func TestValidAddress(t *testing.T) {
	f := newFixture(t, "0")

	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"valid", validAddress, true},
		{"too short", validAddress[:55], false},
		{"too long", validAddress + "A", false},
		{"wrong prefix", "C" + validAddress[1:], false},
		{"lower case", "G" + strings.ToLower(validAddress[1:]), false},
		{"base32 excludes 1", "G1" + validAddress[2:], false},
		{"digits allowed", "G2345" + validAddress[5:], true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.svc.ValidAddress(tt.addr))
		})
	}
}

func TestGatedMethodsOverride(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(nil, nil, fee.New(fee.DefaultConfig()), nil, nil, nil, walletcache.New("USDC"), nil, nil, logger, Config{
		Currency:      "USDC",
		AddressPrefix: "G",
		AddressLength: 56,
		GatedMethods:  []string{"M-PESA"},
	})

	assert.True(t, svc.RequiresVerification(core.PaymentMethodMPesa))
	assert.False(t, svc.RequiresVerification(core.PaymentMethodEcoCash))
}

type codeVerifier struct{}

func (codeVerifier) SendCode(context.Context, string, string) error { return nil }

func (codeVerifier) CheckCode(_ context.Context, _, code string) error {
	if code != "123456" {
		return errors.New("code mismatch")
	}

	return nil
}

func TestConcurrentDepositsSpendOneCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "0")
	f.signer.delay = 50 * time.Millisecond

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := verification.New(codeVerifier{}, challenge.NewMemory(), logger, verification.Config{
		SendInterval: time.Millisecond,
		MaxAttempts:  3,
	})

	require.NoError(t, gate.SendCode(ctx, "+1555", dec("50")))
	require.NoError(t, gate.VerifyCode(ctx, "+1555", "123456"))

	svc := f.newService(gate)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Deposit(ctx, dec("50"), core.PaymentMethodEcoCash, "+1555")
		}(i)
	}

	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, core.ErrNotVerified)
			failed++
		}
	}

	assert.Equal(t, 1, failed)
	assert.Len(t, f.ledger.appended, 1)
	assert.True(t, f.balance().Equal(dec("50")), "balance %s", f.balance())

	state, err := gate.State(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, core.GateStateIdle, state)
}

func TestFetchDoesNotDropConcurrentSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100")
	f.ledger.hold = &ledgerHold{entered: make(chan struct{}, 1), release: make(chan struct{})}

	fetched := make(chan error, 1)
	go func() {
		_, err := f.svc.FetchTransactions(ctx)
		fetched <- err
	}()

	<-f.ledger.hold.entered

	sent := make(chan *core.Transaction, 1)
	go func() {
		tx, err := f.svc.Send(ctx, dec("50"), validAddress, "")
		assert.NoError(t, err)
		sent <- tx
	}()

	// give the send a chance to run ahead of the stale ledger read
	time.Sleep(20 * time.Millisecond)
	close(f.ledger.hold.release)

	require.NoError(t, <-fetched)
	tx := <-sent
	require.NotNil(t, tx)

	got, ok := f.svc.GetTransaction(tx.ID)
	require.True(t, ok)
	assert.Equal(t, tx, got)
	assert.True(t, f.balance().Equal(dec("49.95")), "balance %s", f.balance())
}

func TestFindTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100")

	sent, err := f.svc.Send(ctx, dec("1"), validAddress, "")
	require.NoError(t, err)

	got, err := f.svc.FindTransaction(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, sent, got)

	older := &core.Transaction{ID: "older", Type: core.TransactionTypeDeposit, Amount: dec("3")}
	f.history.transactions["GACCOUNT/older"] = older

	got, err = f.svc.FindTransaction(ctx, "older")
	require.NoError(t, err)
	assert.Equal(t, older, got)

	got, err = f.svc.FindTransaction(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	f.session.id = nil
	_, err = f.svc.FindTransaction(ctx, "older")
	assert.ErrorIs(t, err, core.ErrNotAuthenticated)
}
