package domain

import (
	"math"
	"sort"
	"strings"
)

// NotInformed labels records whose scalar answer is blank.
const NotInformed = "Not informed"

// Bucket is one group of an aggregation.
type Bucket struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// KeyCount is a raw count, typically one row of a GROUP BY query.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Percent returns count / total × 100 rounded to one decimal, or 0 when
// total is zero.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

// GroupAndCount groups records by a scalar key. Blank keys are counted under
// NotInformed. Buckets are ordered by descending count; ties keep the order
// in which keys were first seen.
func GroupAndCount[T any](records []T, key func(T) string) []Bucket {
	if len(records) == 0 {
		return []Bucket{}
	}
	c := newCounter()
	for _, r := range records {
		k := strings.TrimSpace(key(r))
		if k == "" {
			k = NotInformed
		}
		c.add(k)
	}
	return c.buckets(len(records))
}

// GroupAndCountMulti groups records by a multi-valued key. A record adds one
// to every distinct non-blank value it holds; repeated values within one
// record count once. Percentages use the number of records as denominator,
// so they may sum past 100.
func GroupAndCountMulti[T any](records []T, values func(T) []string) []Bucket {
	if len(records) == 0 {
		return []Bucket{}
	}
	c := newCounter()
	for _, r := range records {
		seen := make(map[string]struct{})
		for _, v := range values(r) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			c.add(v)
		}
	}
	return c.buckets(len(records))
}

// RankCounts turns pre-computed counts into ordered buckets against total.
// Blank keys are relabelled NotInformed and merged.
func RankCounts(counts []KeyCount, total int) []Bucket {
	if len(counts) == 0 {
		return []Bucket{}
	}
	c := newCounter()
	for _, kc := range counts {
		k := strings.TrimSpace(kc.Key)
		if k == "" {
			k = NotInformed
		}
		c.addN(k, kc.Count)
	}
	return c.buckets(total)
}

// CountWhere counts records matching pred.
func CountWhere[T any](records []T, pred func(T) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Filter returns the records matching pred.
func Filter[T any](records []T, pred func(T) bool) []T {
	var out []T
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Top returns at most n leading buckets.
func Top(buckets []Bucket, n int) []Bucket {
	if len(buckets) <= n {
		return buckets
	}
	return buckets[:n]
}

// Keys returns the bucket keys in order.
func Keys(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Key
	}
	return out
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(k string) { c.addN(k, 1) }

func (c *counter) addN(k string, n int) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k] += n
}

func (c *counter) buckets(total int) []Bucket {
	out := make([]Bucket, len(c.order))
	for i, k := range c.order {
		out[i] = Bucket{Key: k, Count: c.counts[k], Percentage: Percent(c.counts[k], total)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
