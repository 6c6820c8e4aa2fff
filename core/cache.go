package core

// WalletCache is the in-memory mirror of balance and history read by the
// presentation layer. Transactions are kept newest first.
type WalletCache interface {
	Balance() Balance
	Transactions() []*Transaction
	Find(id string) (*Transaction, bool)

	// Reconcile prepends transaction and applies its balance effect atomically.
	Reconcile(transaction *Transaction)
	SetBalance(balance Balance)
	ReplaceTransactions(transactions []*Transaction)
	Reset()
}
