package protomap

import (
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
)

const (
	maxDurationSeconds = math.MaxInt64 / int64(time.Second)
	minDurationSeconds = math.MinInt64 / int64(time.Second)
)

const (
	timestampName protoreflect.FullName = "google.protobuf.Timestamp"
	durationName  protoreflect.FullName = "google.protobuf.Duration"
)

// Timestamp and Duration are read and written through reflection so that
// generated and dynamic messages are handled alike.

func secondsNanos(m protoreflect.Message) (int64, int32) {
	fields := m.Descriptor().Fields()
	return m.Get(fields.ByName("seconds")).Int(), int32(m.Get(fields.ByName("nanos")).Int())
}

func setSecondsNanos(m protoreflect.Message, seconds int64, nanos int32) {
	fields := m.Descriptor().Fields()
	m.Set(fields.ByName("seconds"), protoreflect.ValueOfInt64(seconds))
	m.Set(fields.ByName("nanos"), protoreflect.ValueOfInt32(nanos))
}

func timestampTime(m protoreflect.Message) time.Time {
	s, n := secondsNanos(m)
	return time.Unix(s, int64(n)).UTC()
}

// durationOf reports false when m lies outside the range of time.Duration
// (about ±292 years), which google.protobuf.Duration exceeds.
func durationOf(m protoreflect.Message) (time.Duration, bool) {
	s, n := secondsNanos(m)
	if s > maxDurationSeconds || s < minDurationSeconds {
		return 0, false
	}
	d := time.Duration(s) * time.Second
	if n > 0 && d > math.MaxInt64-time.Duration(n) {
		return 0, false
	}
	if n < 0 && d < math.MinInt64-time.Duration(n) {
		return 0, false
	}
	return d + time.Duration(n), true
}

// setTimestamp reports false when val should be decoded as a plain mapping.
func setTimestamp(m protoreflect.Message, val any) (bool, error) {
	var t time.Time
	switch x := val.(type) {
	case time.Time:
		t = x
	case *time.Time:
		t = *x
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return true, fmt.Errorf("%w: invalid timestamp %q", ErrTypeMismatch, x)
		}
		t = parsed
	default:
		return false, nil
	}
	setSecondsNanos(m, t.Unix(), int32(t.Nanosecond()))
	return true, nil
}

// setDuration reports false when val should be decoded as a plain mapping.
func setDuration(m protoreflect.Message, val any) (bool, error) {
	var d time.Duration
	switch x := val.(type) {
	case time.Duration:
		d = x
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return true, fmt.Errorf("%w: invalid duration %q", ErrTypeMismatch, x)
		}
		d = parsed
	default:
		if _, ok := asMap(val); ok {
			return false, nil
		}
		n, err := toInt(val, 64)
		if err != nil {
			return true, err
		}
		d = time.Duration(n)
	}
	setSecondsNanos(m, int64(d/time.Second), int32(d%time.Second))
	return true, nil
}
