package catalog

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// assignString stringifies any scalar. Timestamps become ISO-8601 and
// byte blobs become hex, matching how raw rows are snapshotted.
func assignString(dst **string, value interface{}) error {
	if value == nil {
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = hex.EncodeToString(v)
	case time.Time:
		s = v.Format(time.RFC3339)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprint(v)
	default:
		return fmt.Errorf("cannot represent %T as string", value)
	}
	*dst = &s
	return nil
}

func assignInt(dst **int, value interface{}) error {
	if value == nil {
		return nil
	}
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int8:
		n = int(v)
	case int16:
		n = int(v)
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case uint:
		n = int(v)
	case uint8:
		n = int(v)
	case uint16:
		n = int(v)
	case uint32:
		n = int(v)
	case uint64:
		n = int(v)
	case float64:
		n = int(v)
	case float32:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("cannot parse %q as int", v)
		}
		n = parsed
	default:
		return fmt.Errorf("cannot represent %T as int", value)
	}
	*dst = &n
	return nil
}

func assignFloat(dst **float64, value interface{}) error {
	if value == nil {
		return nil
	}
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("cannot parse %q as float", v)
		}
		f = parsed
	default:
		return fmt.Errorf("cannot represent %T as float", value)
	}
	*dst = &f
	return nil
}

// assignBoolInt coerces boolean-like values ("true"/"false" strings,
// bools, numerics) to 0/1. The upstream procedure emits these columns
// as capitalized strings.
func assignBoolInt(dst **int, value interface{}) error {
	if value == nil {
		return nil
	}
	var n int
	switch v := value.(type) {
	case bool:
		if v {
			n = 1
		}
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "true") {
			n = 1
		}
	case int:
		if v != 0 {
			n = 1
		}
	case int64:
		if v != 0 {
			n = 1
		}
	case float64:
		if v != 0 {
			n = 1
		}
	default:
		return fmt.Errorf("cannot represent %T as boolean flag", value)
	}
	*dst = &n
	return nil
}
