package reserve

import (
	"encoding/json"
	"fmt"
	"io"
)

// MarshalLedger encodes the log as a json array of {type, amount, price, date} objects.
func MarshalLedger(l *Ledger) ([]byte, error) {
	txs := l.transactions
	if txs == nil {
		txs = []Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("cannot encode transactions: %w", err)
	}
	return data, nil
}

// EncodeLedger is like MarshalLedger but writes to w.
func EncodeLedger(w io.Writer, l *Ledger) error {
	data, err := MarshalLedger(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// UnmarshalLedger decodes a json array of transactions. Prices are expressed in 'currency'.
func UnmarshalLedger(data []byte, currency string) (*Ledger, error) {
	var txs []Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("cannot decode transactions: %w", err)
	}
	for i := range txs {
		txs[i].Price = txs[i].Price.In(currency)
	}
	return &Ledger{transactions: txs}, nil
}

// DecodeLedger is like UnmarshalLedger but reads from r.
func DecodeLedger(r io.Reader, currency string) (*Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalLedger(data, currency)
}
