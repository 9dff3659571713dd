// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package frame

// Groups is the result of Frame.GroupBy. Aggregations return a frame with the
// group key column followed by the aggregated column, in first-seen key order.
// An aggregate that would reuse the key column's name gets a suffix naming
// the aggregation, so GroupBy("age").Sum("age") yields "age" and "age_sum".
type Groups struct {
	f    *Frame
	key  string
	keys []any
	rows map[string][]int
}

// Keys returns the distinct group keys.
func (g *Groups) Keys() []any {
	out := make([]any, len(g.keys))
	copy(out, g.keys)
	return out
}

// Len returns the number of groups.
func (g *Groups) Len() int { return len(g.keys) }

// Count returns the number of rows per group in a column named "count".
func (g *Groups) Count() *Frame {
	return g.aggregate("count", "count", func(rows []int) any { return float64(len(rows)) })
}

// Sum adds a numeric column per group.
func (g *Groups) Sum(col string) *Frame {
	s := g.f.Col(col)
	return g.aggregate(col, "sum", func(rows []int) any { return s.take(rows).Sum() })
}

// Mean averages a numeric column per group. Groups without numeric values get
// a missing mean instead of failing.
func (g *Groups) Mean(col string) *Frame {
	s := g.f.Col(col)
	return g.aggregate(col, "mean", func(rows []int) any {
		sub := s.take(rows)
		if sub.IsEmpty() {
			return nil
		}
		return sub.Mean()
	})
}

// Max takes the largest value of a numeric or date column per group.
func (g *Groups) Max(col string) *Frame {
	s := g.f.Col(col)
	return g.aggregate(col, "max", func(rows []int) any {
		sub := s.take(rows)
		if sub.IsEmpty() {
			return nil
		}
		return sub.At(sub.IdxMax())
	})
}

// Min takes the smallest value of a numeric or date column per group.
func (g *Groups) Min(col string) *Frame {
	s := g.f.Col(col)
	return g.aggregate(col, "min", func(rows []int) any {
		sub := s.take(rows)
		if sub.IsEmpty() {
			return nil
		}
		return sub.At(sub.IdxMin())
	})
}

func (g *Groups) aggregate(name, op string, agg func(rows []int) any) *Frame {
	if name == g.key {
		name += "_" + op
	}
	keys := make([]any, len(g.keys))
	vals := make([]any, len(g.keys))
	for i, k := range g.keys {
		keys[i] = k
		vals[i] = agg(g.rows[key(k)])
	}
	return New(NewSeries(g.key, keys), NewSeries(name, vals))
}
