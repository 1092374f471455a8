package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces an arbitrary JSON scalar into a float64. The upstream
// resource mixes numbers, numeric strings, "NA" sentinels and nulls freely,
// so anything that does not parse cleanly becomes 0. The result is always
// finite.
func ToNumber(v interface{}) float64 {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		n = f
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
