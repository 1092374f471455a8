package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestToNumber verifies total safety: every input coerces to a finite
// number, defaulting to 0 for anything non-numeric.
func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"nil", nil, 0},
		{"na sentinel", "NA", 0},
		{"garbage string", "abc", 0},
		{"numeric string", "42.5", 42.5},
		{"padded numeric string", "  7 ", 7},
		{"empty string", "", 0},
		{"int", 42, 42},
		{"int64", int64(-3), -3},
		{"float64", 15209.14, 15209.14},
		{"json number", json.Number("87155"), 87155},
		{"bad json number", json.Number("not-a-number"), 0},
		{"bool true", true, 1},
		{"bool false", false, 0},
		{"nan", math.NaN(), 0},
		{"positive inf", math.Inf(1), 0},
		{"negative inf", math.Inf(-1), 0},
		{"unsupported type", []string{"x"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		})
	}
}
