// Package analytics computes frequency and recency tables over a draw history window.
package analytics

import (
	"slices"

	"github.com/rewired-gh/luckylogic/internal/models"
)

// Domain is an inclusive integer range of playable values.
type Domain struct {
	Min int
	Max int
}

var (
	MainDomain = Domain{Min: models.MainMin, Max: models.MainMax}
	StarDomain = Domain{Min: models.StarMin, Max: models.StarMax}
)

// Size returns the number of values in the domain.
func (d Domain) Size() int {
	return d.Max - d.Min + 1
}

// Contains reports whether n lies in the domain.
func (d Domain) Contains(n int) bool {
	return n >= d.Min && n <= d.Max
}

// Values returns the domain in ascending order.
func (d Domain) Values() []int {
	out := make([]int, 0, d.Size())
	for n := d.Min; n <= d.Max; n++ {
		out = append(out, n)
	}
	return out
}

// Table maps every value of a Domain to an integer (a count or a gap).
// Keys outside the domain are never stored.
type Table struct {
	domain Domain
	values []int
}

// NewTable returns a table with every key of d set to fill.
func NewTable(d Domain, fill int) Table {
	values := make([]int, d.Size())
	if fill != 0 {
		for i := range values {
			values[i] = fill
		}
	}
	return Table{domain: d, values: values}
}

// Domain returns the table's key domain.
func (t Table) Domain() Domain {
	return t.domain
}

// Get returns the value for n, or 0 when n is outside the domain.
func (t Table) Get(n int) int {
	if !t.domain.Contains(n) || t.values == nil {
		return 0
	}
	return t.values[n-t.domain.Min]
}

func (t Table) set(n, v int) {
	t.values[n-t.domain.Min] = v
}

func (t Table) add(n int) {
	t.values[n-t.domain.Min]++
}

// Keys returns the domain values in ascending order.
func (t Table) Keys() []int {
	if t.values == nil {
		return []int{}
	}
	return t.domain.Values()
}

// Map returns a copy of the table as a map, for JSON rendering.
func (t Table) Map() map[int]int {
	out := make(map[int]int, len(t.values))
	for i, v := range t.values {
		out[t.domain.Min+i] = v
	}
	return out
}

// Max returns the largest value in the table.
func (t Table) Max() int {
	if len(t.values) == 0 {
		return 0
	}
	return slices.Max(t.values)
}

// TopN returns the n keys with the highest (highest=true) or lowest values.
// Ties keep ascending key order.
func TopN(t Table, n int, highest bool) []int {
	if n <= 0 {
		return []int{}
	}
	keys := t.Keys()
	slices.SortStableFunc(keys, func(a, b int) int {
		if highest {
			return t.Get(b) - t.Get(a)
		}
		return t.Get(a) - t.Get(b)
	})
	if n < len(keys) {
		keys = keys[:n]
	}
	return keys
}
