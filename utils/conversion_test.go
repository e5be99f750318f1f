package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeInt64ToUint32(t *testing.T) {
	tests := []struct {
		name    string
		value   int64
		want    uint32
		wantErr bool
	}{
		{name: "zero", value: 0, want: 0},
		{name: "port", value: 50051, want: 50051},
		{name: "max", value: math.MaxUint32, want: math.MaxUint32},
		{name: "negative", value: -1, wantErr: true},
		{name: "overflow", value: math.MaxUint32 + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeInt64ToUint32(tt.value)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
