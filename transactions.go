package reserve

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is a typed string for identifying transactions.
type Kind string

// Transaction kinds.
const (
	Buy  Kind = "buy"
	Sell Kind = "sell"
)

// ErrUnknownKind is returned when a transaction is neither a buy nor a sell.
var ErrUnknownKind = errors.New("unknown transaction type")

// ParseKind parses "buy" or "sell", case insensitive.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Buy, Sell:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
}

// Title returns "Buy" or "Sell".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// TimestampFormat is the persisted format of transaction dates (ISO-8601, UTC, milliseconds).
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Transaction is a single buy or sell of the tracked asset.
type Transaction struct {
	Kind   Kind      // Kind is either Buy or Sell.
	Amount Quantity  // Amount is the quantity of the asset bought or sold.
	Price  Money     // Price is the unit price in the quote currency at transaction time.
	Date   time.Time // Date is the instant the transaction was recorded.
}

// NewBuy creates a new buy transaction.
func NewBuy(on time.Time, amount Quantity, price Money) Transaction {
	return Transaction{Kind: Buy, Amount: amount, Price: price, Date: on.UTC()}
}

// NewSell creates a new sell transaction.
func NewSell(on time.Time, amount Quantity, price Money) Transaction {
	return Transaction{Kind: Sell, Amount: amount, Price: price, Date: on.UTC()}
}

// Total returns amount times price, the value of the transaction.
func (t Transaction) Total() Money { return t.Price.Mul(t.Amount) }

// signed returns the amount and value as they contribute to the holdings:
// positive for buys, negative for sells.
func (t Transaction) signed() (Quantity, Money) {
	if t.Kind == Sell {
		return t.Amount.Neg(), t.Total().Neg()
	}
	return t.Amount, t.Total()
}

// Equal reports whether both transactions have numerically equal fields.
func (t Transaction) Equal(o Transaction) bool {
	return t.Kind == o.Kind && t.Amount.Equal(o.Amount) && t.Price.value.Equal(o.Price.value) && t.Date.Equal(o.Date)
}

// Validate checks the transaction fields.
//
// Stored logs are not validated by the aggregator: Validate is meant for the
// input boundary only.
func (t Transaction) Validate() error {
	if t.Kind != Buy && t.Kind != Sell {
		return fmt.Errorf("%w %q", ErrUnknownKind, t.Kind)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: %s transaction amount must be positive, got %s", ErrInvalidAmount, t.Kind, t.Amount)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%s transaction price must be positive, got %s", t.Kind, t.Price.value)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%s transaction date is missing", t.Kind)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Kind)
	w.Append("amount", t.Amount)
	w.Append("price", t.Price)
	w.Append("date", t.Date.UTC().Format(TimestampFormat))
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		Type   string   `json:"type"`
		Amount Quantity `json:"amount"`
		Price  Money    `json:"price"`
		Date   string   `json:"date"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	kind, err := ParseKind(temp.Type)
	if err != nil {
		return err
	}
	on, err := time.Parse(time.RFC3339, temp.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", temp.Date, err)
	}
	*t = Transaction{Kind: kind, Amount: temp.Amount, Price: temp.Price, Date: on.UTC()}
	return nil
}
