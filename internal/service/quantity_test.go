package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredQuantity(t *testing.T) {
	tests := []struct {
		name           string
		quantity       float64
		wastagePercent float64
		buildQty       float64
		want           int64
	}{
		{
			name:     "no wastage",
			quantity: 2, wastagePercent: 0, buildQty: 5,
			want: 10,
		},
		{
			name:     "10 percent wastage rounds up",
			quantity: 2, wastagePercent: 10, buildQty: 5,
			want: 11,
		},
		{
			name:     "fractional wastage ceils once at the end",
			quantity: 3, wastagePercent: 2.5, buildQty: 1,
			want: 4, // 3.075
		},
		{
			name:     "exact result is not inflated",
			quantity: 4, wastagePercent: 25, buildQty: 2,
			want: 10, // 8 * 1.25
		},
		{
			name:     "single unit single build",
			quantity: 1, wastagePercent: 0, buildQty: 1,
			want: 1,
		},
		{
			name:     "float quantity avoids binary drift",
			quantity: 0.1, wastagePercent: 0, buildQty: 10,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredQuantity(tt.quantity, tt.wastagePercent, tt.buildQty)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortfallQuantity(t *testing.T) {
	tests := []struct {
		name      string
		required  int64
		available float64
		want      int64
	}{
		{name: "exact stock", required: 11, available: 11, want: 0},
		{name: "surplus stock", required: 11, available: 20, want: 0},
		{name: "short by two", required: 11, available: 9, want: 2},
		{name: "fractional stock rounds shortfall up", required: 11, available: 10.5, want: 1},
		{name: "empty stock", required: 11, available: 0, want: 11},
		{name: "negative stock counts in full", required: 5, available: -3, want: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortfallQuantity(tt.required, tt.available))
		})
	}
}

// 零损耗时单件需求乘以构建数量后不应出现任何放大
func TestRequiredQuantityZeroWastageRoundTrip(t *testing.T) {
	for buildQty := 1; buildQty <= 50; buildQty++ {
		got := RequiredQuantity(3, 0, float64(buildQty))
		assert.Equal(t, int64(3*buildQty), got)
	}
}
