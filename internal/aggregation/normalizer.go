package aggregation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"adsdash/internal/domain"
)

// Totals holds the summable fields of one record or of a group of records.
type Totals struct {
	Spend       float64
	Clicks      int64
	Impressions int64
	Reach       int64
	Results     int64
	Revenue     float64
}

// Add accumulates other into t.
func (t *Totals) Add(other Totals) {
	t.Spend += other.Spend
	t.Clicks += other.Clicks
	t.Impressions += other.Impressions
	t.Reach += other.Reach
	t.Results += other.Results
	t.Revenue += other.Revenue
}

// Normalizer coerces a raw record into numeric totals. It never fails: any
// field that cannot be read as a number counts as zero.
type Normalizer struct {
	conversions ConversionSet
}

func NewNormalizer(conversions ConversionSet) Normalizer {
	return Normalizer{conversions: conversions}
}

func (n Normalizer) Normalize(r domain.RawInsight) Totals {
	t := Totals{
		Spend:       toFloat(r.Spend),
		Clicks:      toInt(r.Clicks),
		Impressions: toInt(r.Impressions),
		Reach:       toInt(r.Reach),
	}

	for _, action := range r.Actions {
		if n.isConversion(action) {
			t.Results += toInt(action.Value)
		}
	}

	for _, action := range r.ActionValues {
		if n.isConversion(action) {
			t.Revenue += toFloat(action.Value)
		}
	}

	return t
}

// only JSON strings can match an action type
func (n Normalizer) isConversion(a domain.Action) bool {
	b := bytes.TrimSpace(a.ActionType)
	if len(b) == 0 || b[0] != '"' {
		return false
	}
	var actionType string
	if err := json.Unmarshal(b, &actionType); err != nil {
		return false
	}
	return n.conversions.Contains(actionType)
}

func toFloat(f domain.Field) float64 {
	v, ok := number(f)
	if !ok {
		return 0
	}
	return v
}

// toInt truncates toward zero, so "6.9" counts as 6.
func toInt(f domain.Field) int64 {
	v, ok := number(f)
	if !ok || math.Abs(v) >= math.MaxInt64 {
		return 0
	}
	return int64(v)
}

func number(f domain.Field) (float64, bool) {
	b := bytes.TrimSpace(f)
	if len(b) == 0 {
		return 0, false
	}

	var (
		v   float64
		err error
	)

	switch {
	case b[0] == '"':
		var s string
		if err = json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	case string(b) == "true":
		return 1, true
	case string(b) == "false":
		return 0, true
	default:
		v, err = strconv.ParseFloat(string(b), 64)
	}

	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// toText reads a label field. Strings are used as-is, numbers by their
// literal text; anything else is empty.
func toText(f domain.Field) string {
	b := bytes.TrimSpace(f)
	if len(b) == 0 {
		return ""
	}

	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ""
		}
		return s
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		return string(b)
	default:
		return ""
	}
}
