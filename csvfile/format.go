package csvfile

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FormatValue renders v the way result files have always spelled values:
// nil is None, booleans are True/False and floats keep a fractional part.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return formatFloat(x, 64)
	case float32:
		return formatFloat(float64(x), 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return formatKind(reflect.ValueOf(v))
	}
}

// formatKind handles named types over the basic kinds, such as a bool
// based flag type without a String method.
func formatKind(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Bool:
		return FormatValue(rv.Bool())
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	case reflect.String:
		return rv.String()
	default:
		return fmt.Sprint(rv.Interface())
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	format := byte('f')
	if a := math.Abs(f); a >= 1e16 || (a != 0 && a < 1e-4) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}
