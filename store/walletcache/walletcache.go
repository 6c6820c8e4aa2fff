package walletcache

import (
	"sync"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/shopspring/decimal"
)

// Cache is the process-wide mirror of balance and history. It is owned by
// whoever constructs it and handed to the payment service explicitly.
type Cache struct {
	mux          sync.RWMutex
	balance      core.Balance
	transactions []*core.Transaction
	index        map[string]*core.Transaction
}

func New(currency string) *Cache {
	return &Cache{
		balance: core.Balance{Amount: decimal.Zero, Currency: currency},
		index:   map[string]*core.Transaction{},
	}
}

func (c *Cache) Balance() core.Balance {
	c.mux.RLock()
	defer c.mux.RUnlock()

	return c.balance
}

func (c *Cache) Transactions() []*core.Transaction {
	c.mux.RLock()
	defer c.mux.RUnlock()

	transactions := make([]*core.Transaction, len(c.transactions))
	for idx, tx := range c.transactions {
		transactions[idx] = clone(tx)
	}

	return transactions
}

func (c *Cache) Find(id string) (*core.Transaction, bool) {
	c.mux.RLock()
	defer c.mux.RUnlock()

	tx, ok := c.index[id]
	if !ok {
		return nil, false
	}

	return clone(tx), true
}

func (c *Cache) Reconcile(transaction *core.Transaction) {
	tx := clone(transaction)

	c.mux.Lock()
	defer c.mux.Unlock()

	c.balance.Amount = c.balance.Amount.Add(tx.BalanceEffect())
	c.transactions = append([]*core.Transaction{tx}, c.transactions...)
	c.index[tx.ID] = tx
}

func (c *Cache) SetBalance(balance core.Balance) {
	c.mux.Lock()
	c.balance = balance
	c.mux.Unlock()
}

func (c *Cache) ReplaceTransactions(transactions []*core.Transaction) {
	list := make([]*core.Transaction, 0, len(transactions))
	index := make(map[string]*core.Transaction, len(transactions))
	for _, tx := range transactions {
		tx = clone(tx)
		list = append(list, tx)
		index[tx.ID] = tx
	}

	c.mux.Lock()
	c.transactions = list
	c.index = index
	c.mux.Unlock()
}

func (c *Cache) Reset() {
	c.mux.Lock()
	c.balance = core.Balance{Amount: decimal.Zero, Currency: c.balance.Currency}
	c.transactions = nil
	c.index = map[string]*core.Transaction{}
	c.mux.Unlock()
}

func clone(tx *core.Transaction) *core.Transaction {
	v := *tx
	return &v
}
