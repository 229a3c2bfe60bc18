// Package draws turns loosely-typed draw payloads into clean models.Draw values
// and orders them into history windows.
package draws

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rewired-gh/luckylogic/internal/models"
)

var (
	dateKeys    = []string{"date", "drawDate", "draw_date"}
	jackpotKeys = []string{"estimatedJackpot", "jackpot", "jackpotAmount", "topPrize", "jackpot_amount"}
	drawIDKeys  = []string{"drawNo", "drawNumber"}

	dateLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"02/01/2006",
	}
)

// Normalize converts one raw JSON draw object. ok is false when raw is not an object.
func Normalize(raw []byte, source string) (models.Draw, bool) {
	return NormalizeResult(gjson.ParseBytes(raw), source)
}

// NormalizeResult converts one parsed draw object.
// Unconvertible numbers and stars are dropped; an unparseable date leaves Date zero.
func NormalizeResult(r gjson.Result, source string) (models.Draw, bool) {
	if !r.IsObject() {
		return models.Draw{}, false
	}

	d := models.Draw{
		Numbers: IntList(r.Get("numbers")),
		Stars:   IntList(r.Get("stars")),
		Jackpot: parseJackpot(r),
		Source:  source,
	}
	for _, key := range dateKeys {
		if t := ParseDateValue(r.Get(key)); !t.IsZero() {
			d.Date = t
			break
		}
	}
	for _, key := range drawIDKeys {
		if v := r.Get(key); v.Exists() && v.Type != gjson.Null && v.String() != "" {
			d.DrawID = v.String()
			break
		}
	}
	return d, true
}

// NormalizeAll converts an array payload. Non-object items are skipped and a
// non-array payload yields no draws.
func NormalizeAll(raw []byte, source string) []models.Draw {
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return []models.Draw{}
	}
	out := make([]models.Draw, 0, len(root.Array()))
	root.ForEach(func(_, item gjson.Result) bool {
		if d, ok := NormalizeResult(item, source); ok {
			out = append(out, d)
		}
		return true
	})
	return out
}

// IntList coerces a JSON array of ints, numeric strings and floats into ints.
// Floats are truncated toward zero; anything else is dropped.
func IntList(r gjson.Result) []int {
	out := []int{}
	if !r.IsArray() {
		return out
	}
	for _, v := range r.Array() {
		if n, ok := CoerceInt(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// CoerceInt converts a single JSON value to an int.
func CoerceInt(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		if math.IsNaN(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
			return 0, false
		}
		return int(math.Trunc(v.Num)), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ParseDateValue parses a JSON date value; see ParseDate.
func ParseDateValue(v gjson.Result) time.Time {
	if v.Type != gjson.String {
		return time.Time{}
	}
	return ParseDate(v.Str)
}

// ParseDate tries ISO-8601, YYYY-MM-DD and DD/MM/YYYY in order and returns the
// calendar date at UTC midnight. It returns the zero time when nothing parses.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

func parseJackpot(r gjson.Result) *int64 {
	for _, key := range jackpotKeys {
		v := r.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type == gjson.Number {
			if v.Num < 0 || v.Num > math.MaxInt64/2 {
				continue
			}
			n := int64(v.Num)
			return &n
		}
		if n, ok := DigitsOnly(v.String()); ok {
			return &n
		}
	}
	return nil
}

// DigitsOnly strips every non-digit rune and parses what is left.
func DigitsOnly(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Prepare orders draws newest first, undated draws last, and keeps the first
// historyN. historyN <= 0 keeps everything. The input slice is not modified.
func Prepare(in []models.Draw, historyN int) []models.Draw {
	out := slices.Clone(in)
	SortNewestFirst(out)
	if historyN > 0 && len(out) > historyN {
		out = out[:historyN]
	}
	return out
}

// SortNewestFirst is a stable in-place sort; draws with equal dates keep their order.
func SortNewestFirst(ds []models.Draw) {
	slices.SortStableFunc(ds, func(a, b models.Draw) int {
		switch {
		case a.HasDate() && !b.HasDate():
			return -1
		case !a.HasDate() && b.HasDate():
			return 1
		default:
			return b.Date.Compare(a.Date)
		}
	})
}
