package types

import (
	"bytes"
	"encoding/json"

	"github.com/drytrack/drytrack-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Measure names a weight column folded into buckets.
type Measure string

const (
	MeasureInitialWeight Measure = "initial_weight"
	MeasureFinalWeight   Measure = "final_weight"
)

// Bucket accumulates the weights of every record sharing one group key.
type Bucket struct {
	Key           string
	InitialWeight decimal.Decimal
	FinalWeight   decimal.Decimal
	Records       int
}

func (b Bucket) Value(m Measure) decimal.Decimal {
	if m == MeasureInitialWeight {
		return b.InitialWeight
	}
	return b.FinalWeight
}

// Series is an ordered fold of records. Chronological reports whether
// calendar keys were put in date order; false means first-seen order.
type Series struct {
	GroupBy       enums.GroupBy
	Buckets       []Bucket
	Chronological bool
}

func (s Series) Keys() []string {
	out := make([]string, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		out = append(out, b.Key)
	}
	return out
}

func (s Series) Bucket(key string) (Bucket, bool) {
	for _, b := range s.Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return Bucket{}, false
}

// Sum adds m across every bucket.
func (s Series) Sum(m Measure) decimal.Decimal {
	total := decimal.Zero
	for _, b := range s.Buckets {
		total = total.Add(b.Value(m))
	}
	return total
}

// Totals projects the series onto a single measure.
func (s Series) Totals(m Measure) Totals {
	t := Totals{keys: make([]string, 0, len(s.Buckets)), values: make(map[string]float64, len(s.Buckets))}
	for _, b := range s.Buckets {
		t.keys = append(t.keys, b.Key)
		t.values[b.Key] = b.Value(m).InexactFloat64()
	}
	return t
}

type weights struct {
	InitialWeight float64 `json:"initial_weight"`
	FinalWeight   float64 `json:"final_weight"`
}

// MarshalJSON renders {"key": {"initial_weight": x, "final_weight": y}, ...}
// in bucket order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s.Buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, b.Key, weights{
			InitialWeight: b.InitialWeight.InexactFloat64(),
			FinalWeight:   b.FinalWeight.InexactFloat64(),
		}); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Totals is an insertion-ordered key to number mapping.
type Totals struct {
	keys   []string
	values map[string]float64
}

func (t Totals) Keys() []string { return append([]string(nil), t.keys...) }

func (t Totals) Get(key string) (float64, bool) {
	v, ok := t.values[key]
	return v, ok
}

func (t Totals) Len() int { return len(t.keys) }

func (t Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeEntry(&buf, k, t.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
