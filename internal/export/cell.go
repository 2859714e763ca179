// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// missing is the text rendering of a NaN cell.
const missing = "NaN"

// FormatCell renders a cell value as text. Floats use the shortest exact
// decimal form, NaN renders as "NaN", and nil as the empty string.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return missing
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// numeric reports whether v is a number and returns it as a float64. NaN
// counts as numeric.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	default:
		return 0, false
	}
}

// highlighted reports whether v is a number at or above the threshold.
func highlighted(v any, opts Options) bool {
	if opts.ColourThreshold == nil {
		return false
	}
	f, ok := numeric(v)
	return ok && !math.IsNaN(f) && f >= *opts.ColourThreshold
}
