package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency 默认币种
const DefaultCurrency = "CNY"

var (
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrInvalidAmount    = errors.New("money: invalid amount")
)

var (
	maxCents = decimal.New(math.MaxInt64, 0)
	minCents = decimal.New(math.MinInt64, 0)
)

// Money 定点金额，内部以最小货币单位（分）存储，禁止浮点累加
type Money struct {
	Cents    int64
	Currency string
}

func New(cents int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Cents: cents, Currency: strings.ToUpper(currency)}
}

func Zero(currency string) Money {
	return New(0, currency)
}

// Parse 解析 "100", "100.5", "100.50" 等十进制字符串，超过两位小数视为非法
func Parse(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: %q has more than two decimals", ErrInvalidAmount, s)
	}
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return New(cents.IntPart(), currency), nil
}

func (m Money) Add(o Money) (Money, error) {
	if err := m.check(o); err != nil {
		return Money{}, err
	}
	return Money{Cents: m.Cents + o.Cents, Currency: m.currency()}, nil
}

// MustAdd 用于同一币种已保证的累加场景
func (m Money) MustAdd(o Money) Money {
	r, err := m.Add(o)
	if err != nil {
		panic(err)
	}
	return r
}

func (m Money) Cmp(o Money) (int, error) {
	if err := m.check(o); err != nil {
		return 0, err
	}
	switch {
	case m.Cents < o.Cents:
		return -1, nil
	case m.Cents > o.Cents:
		return 1, nil
	}
	return 0, nil
}

func (m Money) IsPositive() bool { return m.Cents > 0 }

func (m Money) IsZero() bool { return m.Cents == 0 }

// String 两位小数展示，例如 "350.00"
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 同时接受 "12.34" 和 12.34 两种写法
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		return fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	v, err := Parse(raw, m.currency())
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}

func (m Money) check(o Money) error {
	if m.currency() != o.currency() {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency(), o.currency())
	}
	return nil
}
