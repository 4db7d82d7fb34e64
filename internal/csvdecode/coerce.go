package csvdecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// naValues are the tokens read as a missing value in every column type.
var naValues = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"null":     {},
	"NULL":     {},
	"None":     {},
	"<NA>":     {},
	"#N/A":     {},
	"#NA":      {},
	"#N/A N/A": {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
}

// IsMissing reports whether raw reads as a missing value.
func IsMissing(raw string) bool {
	_, ok := naValues[raw]
	return ok
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

var (
	errNotInteger   = errors.New("not an integer")
	errNotFloat     = errors.New("not a number")
	errNotTimestamp = errors.New("not a timestamp")
)

// Coerce converts one raw cell to the Go representation of typ: nil for a
// missing value, otherwise int64, float64, string or time.Time.
func Coerce(typ csvingest.ColumnType, raw string) (any, error) {
	if IsMissing(raw) {
		return nil, nil
	}
	switch typ {
	case csvingest.TypeText:
		return raw, nil
	case csvingest.TypeInteger:
		return parseInteger(raw)
	case csvingest.TypeFloat:
		return parseFloat(raw)
	case csvingest.TypeTimestamp:
		return parseTimestamp(raw)
	default:
		return nil, fmt.Errorf("unsupported column type %s", typ)
	}
}

func parseInteger(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	// "1.0" is how a nullable integer column looks once it went through a float.
	if !isDecimal(s) {
		return 0, errNotInteger
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: out of range", errNotInteger)
	}
	return int64(f), nil
}

// isDecimal rejects the Go literal forms strconv.ParseFloat accepts beyond
// plain decimal notation: digit separators and hexadecimal mantissas.
func isDecimal(s string) bool {
	if strings.ContainsRune(s, '_') {
		return false
	}
	s = strings.TrimLeft(s, "+-")
	return !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X")
}

func parseFloat(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if !isDecimal(s) {
		return 0, errNotFloat
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f, nil
		}
		return 0, errNotFloat
	}
	return f, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errNotTimestamp
}

// inferer narrows a column's type as sample values are observed.
// Timestamps are never inferred; declare them.
type inferer struct {
	seen     bool
	notInt   bool
	notFloat bool
}

func (in *inferer) observe(raw string) {
	if IsMissing(raw) {
		return
	}
	in.seen = true
	s := strings.TrimSpace(raw)
	if !in.notInt {
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			in.notInt = true
		}
	}
	if in.notInt && !in.notFloat {
		if _, err := parseFloat(s); err != nil {
			in.notFloat = true
		}
	}
}

// result returns the inferred type. rows is the number of sampled rows: a
// column with rows but no values holds only missing values and is a float
// column, while a header-only source yields text.
func (in *inferer) result(rows int) csvingest.ColumnType {
	switch {
	case !in.seen && rows > 0:
		return csvingest.TypeFloat
	case !in.seen:
		return csvingest.TypeText
	case !in.notInt:
		return csvingest.TypeInteger
	case !in.notFloat:
		return csvingest.TypeFloat
	default:
		return csvingest.TypeText
	}
}
