package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// maxAdditionalKeys caps the API_KEY_1..N environment scan.
const maxAdditionalKeys = 19

// APIKeys collects every configured API key: the primary key from
// NOVELTRANS_API_KEY, plain API_KEY or the config file, then the numbered
// keys NOVELTRANS_API_KEY_1 through _19 (again with a plain fallback).
// Order matters: the rotator hands keys out in this order.
func APIKeys() []string {
	var keys []string

	if key := envKey("API_KEY"); key != "" {
		keys = append(keys, key)
	} else if key := viper.GetString("api.key"); key != "" {
		keys = append(keys, key)
	}

	for i := 1; i <= maxAdditionalKeys; i++ {
		if key := envKey(fmt.Sprintf("API_KEY_%d", i)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// envKey reads the prefixed form of an environment variable, falling back
// to the bare name.
func envKey(name string) string {
	if v := os.Getenv("NOVELTRANS_" + name); v != "" {
		return v
	}
	return os.Getenv(name)
}

// ParseRange parses a chapter range like "5-10" into the inclusive bounds.
func ParseRange(spec string) (from, to int, err error) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range %q, expected FROM-TO", spec)
	}
	from, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q", parts[0])
	}
	to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q", parts[1])
	}
	if from <= 0 || to < from {
		return 0, 0, fmt.Errorf("invalid range %q, need 1 <= FROM <= TO", spec)
	}
	return from, to, nil
}

// SelectChapters picks the chapters to translate from the available ones
// based on the selection flags. With no selection flags set, every
// available chapter is a candidate.
func (f *Flags) SelectChapters(available []int) ([]int, error) {
	switch {
	case f.Chapter > 0:
		for _, n := range available {
			if n == f.Chapter {
				return []int{n}, nil
			}
		}
		return nil, fmt.Errorf("chapter %d not found in source directory", f.Chapter)

	case f.RangeSpec != "":
		from, to, err := ParseRange(f.RangeSpec)
		if err != nil {
			return nil, err
		}
		var out []int
		for _, n := range available {
			if n >= from && n <= to {
				out = append(out, n)
			}
		}
		return out, nil

	case f.Start > 0:
		var out []int
		for _, n := range available {
			if n < f.Start {
				continue
			}
			out = append(out, n)
			if f.Count > 0 && len(out) == f.Count {
				break
			}
		}
		return out, nil

	default:
		return available, nil
	}
}
