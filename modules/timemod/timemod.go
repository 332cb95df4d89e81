// Package timemod provides the time standard library module.
// Timestamps are float seconds since the Unix epoch; formatting uses
// ANSI C strftime directives.
package timemod

import (
	"time"

	"gitlab.com/variadico/lctime"

	"github.com/hazel-lang/hazel"
)

const defaultFormat = "%Y-%m-%d %H:%M:%S"

func number(name string, v hazel.Value) (float64, *hazel.Failure) {
	switch v := v.(type) {
	case hazel.Int:
		return float64(v), nil
	case hazel.Float:
		return float64(v), nil
	}
	return 0, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "%s() requires number, got %s", name, v.TypeName())
}

func fromTimestamp(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// timestampArg reads an optional leading timestamp argument, defaulting
// to now.
func timestampArg(name string, args []hazel.Value) (time.Time, *hazel.Failure) {
	if len(args) == 0 {
		return time.Now(), nil
	}
	ts, fail := number(name, args[0])
	if fail != nil {
		return time.Time{}, fail
	}
	return fromTimestamp(ts), nil
}

// field registers a get_* accessor taking an optional timestamp.
func field(m *hazel.Module, name, doc string, fn func(time.Time) int) {
	m.RegisterFunc(name, -1, doc, func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) > 1 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "%s() expects at most 1 argument, got %d", name, len(args))
		}
		t, fail := timestampArg(name, args)
		if fail != nil {
			return nil, fail
		}
		return hazel.Int(fn(t)), nil
	})
}

// Module builds the time module.
func Module() *hazel.Module {
	m := hazel.NewModule("time")

	m.RegisterFunc("now", 0, "current timestamp in seconds", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Float(float64(time.Now().UnixNano()) / 1e9), nil
	})
	m.RegisterFunc("now_ms", 0, "current timestamp in milliseconds", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Int(time.Now().UnixMilli()), nil
	})
	m.RegisterFunc("sleep", 1, "sleep for seconds", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		secs, fail := number("sleep", args[0])
		if fail != nil {
			return nil, fail
		}
		if secs < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "sleep() requires non-negative number")
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("sleep_ms", 1, "sleep for milliseconds", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		ms, fail := number("sleep_ms", args[0])
		if fail != nil {
			return nil, fail
		}
		if ms < 0 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "sleep_ms() requires non-negative number")
		}
		time.Sleep(time.Duration(ms * float64(time.Millisecond)))
		return hazel.Bool(true), nil
	})
	m.RegisterFunc("format", -1, "format a timestamp with strftime directives", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "format() expects at most 2 arguments, got %d", len(args))
		}
		t, fail := timestampArg("format", args)
		if fail != nil {
			return nil, fail
		}
		format := defaultFormat
		if len(args) == 2 {
			s, ok := args[1].(hazel.Str)
			if !ok {
				return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "format() requires string format, got %s", args[1].TypeName())
			}
			format = string(s)
		}
		return hazel.Str(lctime.Strftime(format, t)), nil
	})
	m.RegisterFunc("parse", -1, "parse a time string with strftime directives", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		if len(args) < 1 || len(args) > 2 {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "parse() expects 1 or 2 arguments, got %d", len(args))
		}
		s, ok := args[0].(hazel.Str)
		if !ok {
			return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "parse() requires string, got %s", args[0].TypeName())
		}
		format := defaultFormat
		if len(args) == 2 {
			f, ok := args[1].(hazel.Str)
			if !ok {
				return nil, hazel.NewFailuref(hazel.TypeFailure, 0, 0, "parse() requires string format, got %s", args[1].TypeName())
			}
			format = string(f)
		}
		// Render the Go reference time through the strftime format to
		// recover a layout time.Parse understands.
		ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.FixedZone("MST", -7*60*60))
		layout := lctime.Strftime(format, ref)
		t, err := time.ParseInLocation(layout, string(s), time.Local)
		if err != nil {
			return nil, hazel.NewFailuref(hazel.ValueFailure, 0, 0, "Cannot parse time: %s", err)
		}
		return hazel.Float(float64(t.UnixNano()) / 1e9), nil
	})
	field(m, "get_year", "year", func(t time.Time) int { return t.Year() })
	field(m, "get_month", "month, 1 to 12", func(t time.Time) int { return int(t.Month()) })
	field(m, "get_day", "day of month", func(t time.Time) int { return t.Day() })
	field(m, "get_hour", "hour, 0 to 23", func(t time.Time) int { return t.Hour() })
	field(m, "get_minute", "minute", func(t time.Time) int { return t.Minute() })
	field(m, "get_second", "second", func(t time.Time) int { return t.Second() })
	field(m, "get_weekday", "weekday, 0 is Monday", func(t time.Time) int {
		return (int(t.Weekday()) + 6) % 7
	})
	m.RegisterFunc("get_iso_date", -1, "ISO date string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		t, fail := timestampArg("get_iso_date", args)
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(t.Format("2006-01-02")), nil
	})
	m.RegisterFunc("get_iso_time", -1, "ISO time string", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		t, fail := timestampArg("get_iso_time", args)
		if fail != nil {
			return nil, fail
		}
		return hazel.Str(t.Format("15:04:05")), nil
	})
	m.RegisterFunc("add_days", 2, "add days to a timestamp", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		ts, fail := number("add_days", args[0])
		if fail != nil {
			return nil, fail
		}
		days, fail := number("add_days", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float(ts + days*86400), nil
	})
	m.RegisterFunc("diff_days", 2, "difference between timestamps in days", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		a, fail := number("diff_days", args[0])
		if fail != nil {
			return nil, fail
		}
		b, fail := number("diff_days", args[1])
		if fail != nil {
			return nil, fail
		}
		return hazel.Float((a - b) / 86400), nil
	})
	m.RegisterFunc("utc_now", 0, "current UTC timestamp", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		return hazel.Float(float64(time.Now().UTC().UnixNano()) / 1e9), nil
	})
	m.RegisterFunc("local_timezone", 0, "local timezone offset in hours", func(args []hazel.Value) (hazel.Value, *hazel.Failure) {
		_, offset := time.Now().Zone()
		return hazel.Float(float64(offset) / 3600), nil
	})
	return m
}
