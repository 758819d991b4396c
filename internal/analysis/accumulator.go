package analysis

import (
	"sort"
	"strings"

	"github.com/gspc/statement-insights/internal/domain"
)

// NormalizeKey reduces a grouping key to trimmed, single-spaced,
// upper-case form so differently cased or spaced raw values collide
// into the same bucket.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

type bucket struct {
	total float64
	count int
}

// accumulator is an insertion-ordered total/count map. Iteration order
// is the order keys were first seen, which makes top-N tie-breaking
// deterministic without relying on map iteration order.
type accumulator struct {
	keys    []string
	buckets map[string]*bucket
}

func newAccumulator() *accumulator {
	return &accumulator{buckets: make(map[string]*bucket)}
}

func (a *accumulator) add(key string, amount float64) {
	b, ok := a.buckets[key]
	if !ok {
		b = &bucket{}
		a.buckets[key] = b
		a.keys = append(a.keys, key)
	}
	b.total += amount
	b.count++
}

func (a *accumulator) total(key string) float64 {
	if b, ok := a.buckets[key]; ok {
		return b.total
	}
	return 0
}

func (a *accumulator) orderedKeys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

func (a *accumulator) totals() []float64 {
	out := make([]float64, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, a.buckets[k].total)
	}
	return out
}

// top returns the n largest entries by total, descending. The stable
// sort over insertion order keeps ties deterministic.
func (a *accumulator) top(n int) []domain.SpendItem {
	items := make([]domain.SpendItem, 0, len(a.keys))
	for _, k := range a.keys {
		b := a.buckets[k]
		items = append(items, domain.SpendItem{Name: k, Total: b.total, Count: b.count})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total > items[j].Total
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
