package domain

import (
	"math"
	"strconv"
	"strings"
)

// CoerceEmbedding normalizes a caller-provided embedding into a []float32
// before it is handed to the store. Elements may arrive as numbers or numeric
// strings; non-numeric and non-finite elements are replaced with 0.0 rather
// than rejected — the historical lenient policy callers depend on. Non-array
// input is a hard error.
func CoerceEmbedding(raw any) ([]float32, error) {
	switch v := raw.(type) {
	case []float32:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = finiteOrZero(float64(f))
		}
		return out, nil
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = finiteOrZero(f)
		}
		return out, nil
	case []any:
		out := make([]float32, len(v))
		for i, e := range v {
			out[i] = coerceElement(e)
		}
		return out, nil
	}
	return nil, ErrInvalidEmbeddingShape
}

func coerceElement(e any) float32 {
	switch n := e.(type) {
	case float64:
		return finiteOrZero(n)
	case float32:
		return finiteOrZero(float64(n))
	case int:
		return float32(n)
	case int64:
		return float32(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return finiteOrZero(f)
	}
	return 0
}

func finiteOrZero(f float64) float32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return float32(f)
}

// EncodeVector serializes an embedding in the canonical bracketed form
// consumed by the store's similarity operator: [v1,v2,...,vn].
func EncodeVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
