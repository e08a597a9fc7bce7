package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"100", 10000, false},
		{"100.5", 10050, false},
		{"0.01", 1, false},
		{" 12.30 ", 1230, false},
		{"-3.25", -325, false},
		{"1.005", 0, true},
		{"92233720368547758.07", 9223372036854775807, false},
		{"92233720368547758.08", 0, true},
		{"184467440737095517.16", 0, true},
		{"-92233720368547758.09", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			m, err := Parse(tc.in, "cny")
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cents, m.Cents)
			assert.Equal(t, "CNY", m.Currency)
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "350.00", New(35000, "").String())
	assert.Equal(t, "0.07", New(7, "").String())
	assert.Equal(t, "-1.50", New(-150, "").String())
}

// 大量小额累加不能产生精度漂移
func TestMoney_AddNoDrift(t *testing.T) {
	sum := Zero("CNY")
	for i := 0; i < 100000; i++ {
		sum = sum.MustAdd(New(1, "CNY"))
	}
	assert.Equal(t, int64(100000), sum.Cents)
	assert.Equal(t, "1000.00", sum.String())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	_, err := New(100, "CNY").Add(New(100, "USD"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = New(100, "CNY").Cmp(New(100, "USD"))
	require.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoney_Cmp(t *testing.T) {
	c, err := New(100, "").Cmp(New(200, ""))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = New(200, "").Cmp(New(200, "CNY"))
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(New(12345, "CNY"))
	require.NoError(t, err)
	assert.Equal(t, `"123.45"`, string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"99.9"`), &m))
	assert.Equal(t, int64(9990), m.Cents)

	require.NoError(t, json.Unmarshal([]byte(`100`), &m))
	assert.Equal(t, int64(10000), m.Cents)

	require.Error(t, json.Unmarshal([]byte(`"1.2.3"`), &m))
}
