// Package timestamp collapses the timestamp encodings found in source
// documents into one ISO-8601 representation.
//
// Over its history the source stored timestamps as epoch-millisecond numbers,
// epoch-millisecond strings, preformatted date strings, native timestamp
// objects and {seconds, nanoseconds} maps. Normalize is the single place that
// knows this; mappers only ever see its output.
package timestamp

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/jsonutil"
)

// Layout is the output format: UTC with millisecond precision.
const Layout = "2006-01-02T15:04:05.000Z"

var epochDigits = regexp.MustCompile(`^\d{10,13}$`)

// utcer is satisfied by time.Time and by any type embedding it, such as the
// datetime wrappers document-store SDKs decode into.
type utcer interface {
	UTC() time.Time
}

// asTimer is satisfied by protobuf-style timestamp messages.
type asTimer interface {
	AsTime() time.Time
}

// Normalize converts a source timestamp value to ISO-8601.
// The second return value is false when the value represents no timestamp.
//
// Dispatch is by shape:
//   - nil, empty strings and nil pointers: no timestamp
//   - numbers: epoch milliseconds
//   - strings of 10 to 13 digits: epoch milliseconds
//   - other strings: returned unchanged, assumed already date-like
//   - values with a date conversion (UTC or AsTime): converted
//   - maps carrying seconds (and optionally nanoseconds): converted
func Normalize(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return "", false
		}
		if epochDigits.MatchString(s) {
			ms, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return val, true
			}
			return fromMillis(ms), true
		}
		return val, true
	case *time.Time:
		if val == nil {
			return "", false
		}
		return format(*val), true
	case utcer:
		return format(val.UTC()), true
	case asTimer:
		return format(val.AsTime()), true
	case map[string]any:
		return fromSecondsMap(val)
	case bool:
		return "", false
	}

	if f, ok := jsonutil.FlexibleFloatValue(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		return fromMillis(int64(f)), true
	}

	return "", false
}

// Ptr is Normalize for nullable columns.
func Ptr(v any) *string {
	s, ok := Normalize(v)
	if !ok {
		return nil
	}
	return &s
}

func fromSecondsMap(m map[string]any) (string, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return "", false
	}
	seconds, ok := jsonutil.FlexibleIntValue(secRaw)
	if !ok {
		return "", false
	}

	nanosRaw, ok := m["nanoseconds"]
	if !ok {
		nanosRaw = m["_nanoseconds"]
	}
	nanos, _ := jsonutil.FlexibleIntValue(nanosRaw)

	return fromMillis(seconds*1000 + nanos/int64(time.Millisecond)), true
}

func fromMillis(ms int64) string {
	return format(time.UnixMilli(ms))
}

func format(t time.Time) string {
	return t.UTC().Format(Layout)
}
