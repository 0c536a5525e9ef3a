// Package utils provides common formatting and parsing helpers for report data.
package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/bizreport/pkg/models"
)

// DateLayouts are the layouts tried, in order, when parsing time cells.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006/01/02",
}

// FormatCell renders a table cell as display text.
// Midnight timestamps print as a bare date, the way spreadsheets show them.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ToFloat converts a numeric cell to float64. NaN and ±Inf are not
// plottable and report false, like a missing cell.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseTime parses s with the first matching layout in DateLayouts.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ParseCell converts raw text into a cell of the given column type.
// Empty text yields a nil (missing) cell.
func ParseCell(raw string, ct models.ColumnType) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch ct {
	case models.ColumnInt:
		num, ok := normalizeNumber(s)
		if !ok {
			return nil, fmt.Errorf("parsing int %q: not a number", raw)
		}
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing int %q: %w", raw, err)
		}
		return n, nil
	case models.ColumnFloat:
		if isMissingToken(s) {
			return nil, nil
		}
		num, ok := normalizeNumber(s)
		if !ok {
			return nil, fmt.Errorf("parsing float %q: not a number", raw)
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing float %q: %w", raw, err)
		}
		return f, nil
	case models.ColumnTime:
		return ParseTime(s)
	case models.ColumnString, "":
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", ct)
	}
}

// InferColumnType picks the narrowest type that parses every non-empty value:
// int, then float, then time, falling back to string.
func InferColumnType(values []string) models.ColumnType {
	candidates := []models.ColumnType{models.ColumnInt, models.ColumnFloat, models.ColumnTime}
	seen := false
	for _, ct := range candidates {
		ok := true
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			seen = true
			if _, err := ParseCell(v, ct); err != nil {
				ok = false
				break
			}
		}
		if ok && seen {
			return ct
		}
	}
	return models.ColumnString
}

var (
	plainNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// normalizeNumber accepts plain decimal notation and well-formed thousands
// grouping ("1,200", "12,345.5"). Any other comma, as in a decimal comma
// "1,5", makes the text non-numeric.
func normalizeNumber(s string) (string, bool) {
	switch {
	case plainNumber.MatchString(s):
		return s, true
	case groupedNumber.MatchString(s):
		return strings.ReplaceAll(s, ",", ""), true
	default:
		return "", false
	}
}

// isMissingToken reports the spellings spreadsheets and pandas exports use
// for a float with no value.
func isMissingToken(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return true
	}
	return false
}
