package reserve

import (
	"iter"
	"slices"
)

// Ledger is the transaction log of the tracked asset.
//
// Transactions are kept in insertion order. The order only matters for display,
// aggregation does not depend on it.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger, or a ledger with the given transactions.
func NewLedger(txs ...Transaction) *Ledger {
	return &Ledger{transactions: slices.Clone(txs)}
}

// Append adds transactions at the end of the log.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
}

// Clear empties the log.
func (l *Ledger) Clear() { l.transactions = l.transactions[:0] }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns a copy of the log in insertion order.
func (l *Ledger) Transactions() []Transaction { return slices.Clone(l.transactions) }

// Buys iterates over buy transactions only.
func (l *Ledger) Buys() iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Kind != Buy {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Snapshot aggregates the ledger at the given price.
func (l *Ledger) Snapshot(currentPrice Money) Snapshot {
	return Aggregate(l.transactions, currentPrice)
}
