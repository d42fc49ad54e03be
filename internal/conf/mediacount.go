package conf

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// MediaCount is the number of records generated per device. A fixed count
// is stored as Min == Max.
type MediaCount struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// FixedCount returns a MediaCount that always yields n.
func FixedCount(n int) MediaCount {
	return MediaCount{Min: n, Max: n}
}

// IsFixed reports whether the count is a single value.
func (m MediaCount) IsFixed() bool { return m.Min == m.Max }

// String renders the count the way it appears in config files.
func (m MediaCount) String() string {
	if m.IsFixed() {
		return strconv.Itoa(m.Min)
	}
	return fmt.Sprintf("{min: %d, max: %d}", m.Min, m.Max)
}

// MarshalYAML writes a fixed count as a plain integer.
func (m MediaCount) MarshalYAML() (any, error) {
	if m.IsFixed() {
		return m.Min, nil
	}
	return map[string]int{"min": m.Min, "max": m.Max}, nil
}

var mediaCountType = reflect.TypeFor[MediaCount]()

// mediaCountHookFunc decodes media_count_per_device from either a scalar or
// a {min, max} map.
func mediaCountHookFunc() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != mediaCountType {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return FixedCount(v), nil
		case int64:
			return FixedCount(int(v)), nil
		case uint64:
			return FixedCount(int(v)), nil
		case float64:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("media_count_per_device must be a whole number, got %v", v)
			}
			return FixedCount(int(v)), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("media_count_per_device: %w", err)
			}
			return FixedCount(n), nil
		case map[string]any:
			// A map with only one bound is treated as a fixed count.
			lo, hasMin := v["min"]
			hi, hasMax := v["max"]
			switch {
			case hasMin && !hasMax:
				v["max"] = lo
			case hasMax && !hasMin:
				v["min"] = hi
			case !hasMin && !hasMax:
				return nil, fmt.Errorf("media_count_per_device map needs min and max")
			}
			return v, nil
		default:
			return data, nil
		}
	}
}
