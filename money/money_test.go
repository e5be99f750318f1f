package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewFromBtc(t *testing.T) {
	type args struct {
		amount decimal.Decimal
	}
	tests := []struct {
		name    string
		args    args
		want    Money
		wantErr bool
	}{
		{
			name: "NewFromBtc - Pass",
			args: args{
				amount: decimal.NewFromInt(1),
			},
			want:    100000000,
			wantErr: false,
		},
		{
			name: "NewFromBtc - Fail Negative Amount",
			args: args{
				amount: decimal.NewFromInt(-1),
			},
			want:    0,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFromBtc(tt.args.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFromBtc() error = %v, wantErr %v", err, tt.wantErr)

				return
			}
			if got != tt.want {
				t.Errorf("NewFromBtc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewFromSats(t *testing.T) {
	got, err := NewFromSats(1500)
	require.NoError(t, err)
	require.Equal(t, Money(1500), got)
	require.Equal(t, int64(1500), got.Sats())

	_, err = NewFromSats(-1)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNewFromMsat(t *testing.T) {
	got, err := NewFromMsat(1_000_999)
	require.NoError(t, err)
	require.Equal(t, Money(1000), got)

	_, err = NewFromMsat(-1000)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMoney_ToBtc(t *testing.T) {
	tests := []struct {
		name string
		m    Money
		want decimal.Decimal
	}{
		{
			name: "To BTC - Pass",
			m:    100000000,
			want: decimal.NewFromInt(1),
		},
		{
			name: "To BTC - Sub unit",
			m:    2500,
			want: decimal.RequireFromString("0.000025"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.ToBtc(); got.Cmp(tt.want) != 0 {
				t.Errorf("Money.ToBtc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBtc(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    Money
		wantErr error
	}{
		{name: "Whole coin", amount: "1", want: 100000000},
		{name: "Smallest unit", amount: "0.00000001", want: 1},
		{name: "Trailing zeros", amount: "0.000210000", want: 21000},
		{name: "Below one satoshi", amount: "0.000000015", wantErr: ErrSubSatoshi},
		{name: "Negative", amount: "-0.1", wantErr: ErrNegativeAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBtc(tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := ParseBtc("lots")
	require.ErrorContains(t, err, "invalid btc amount")
}
