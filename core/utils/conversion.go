package utils

import (
	"fmt"
	"strconv"
)

// ToString converts a decoded JSON scalar to its display string. Whole
// floats print without a fraction, so 20.0 becomes "20".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
