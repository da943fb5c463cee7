package reserve

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// TransactionInput is the raw user input of the transaction form.
type TransactionInput struct {
	Type   string `validate:"required,oneof=buy sell"`
	Amount string `validate:"required"`          // checked by ParseQuantity
	Price  string `validate:"omitempty,numeric"` // defaults to the current price when empty.
	Date   string // RFC 3339 instant, or a day like 2025-01-31; defaults to now.
}

// ParseTransaction validates the raw input and turns it into a Transaction.
//
// The amount must be a positive number with at most 8 decimals. The price
// defaults to currentPrice, a transaction at a zero or unknown price is refused.
func ParseTransaction(in TransactionInput, currentPrice Money, now time.Time) (Transaction, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Amount = strings.TrimSpace(in.Amount)
	in.Price = strings.TrimSpace(in.Price)

	if err := validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.ToLower(e.Field()), e.Tag()))
			}
			if errs[0].Field() == "Amount" {
				return Transaction{}, fmt.Errorf("%w: %s", ErrInvalidAmount, strings.Join(msgs, ", "))
			}
			return Transaction{}, fmt.Errorf("invalid transaction: %s", strings.Join(msgs, ", "))
		}
		return Transaction{}, err
	}

	kind, err := ParseKind(in.Type)
	if err != nil {
		return Transaction{}, err
	}
	amount, err := ParseQuantity(in.Amount)
	if err != nil {
		return Transaction{}, err
	}

	price := currentPrice
	if in.Price != "" {
		v, err := decimal.NewFromString(in.Price)
		if err != nil {
			return Transaction{}, fmt.Errorf("invalid price %q: %w", in.Price, err)
		}
		price = M(v, currentPrice.Currency())
	}

	on := now
	if in.Date != "" {
		on, err = parseInstant(in.Date)
		if err != nil {
			return Transaction{}, err
		}
	}

	tx := Transaction{Kind: kind, Amount: amount, Price: price, Date: on.UTC()}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// parseInstant accepts an RFC 3339 instant or a plain day (midnight UTC).
func parseInstant(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want 2006-01-02 or RFC 3339", s)
	}
	return t, nil
}
