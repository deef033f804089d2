package inference

import (
	"math/rand/v2"
	"sort"

	"github.com/vincentarsontaneli/data-processor-app/internal/dataset"
)

// Sample is a bounded, reproducible subset of a column's non-missing
// values in string form.
type Sample struct {
	// Values are the drawn values in column order.
	Values []string
	// Population is the number of non-missing values in the column.
	Population int
}

// Len returns the number of sampled values.
func (s Sample) Len() int {
	return len(s.Values)
}

// Draw samples up to size non-missing values from col.
//
// When the column has at most size non-missing values all of them are
// returned. Otherwise exactly size positions are drawn with a PCG source
// seeded by seed, so identical input always yields the identical sample.
func Draw(col *dataset.Column, size int, seed uint64) Sample {
	present := make([]int, 0, len(col.Values))
	for i, v := range col.Values {
		if !dataset.IsMissing(v) {
			present = append(present, i)
		}
	}

	picked := present
	if size >= 0 && len(present) > size {
		rng := rand.New(rand.NewPCG(seed, seed))
		// Partial Fisher-Yates over a copy; the first size slots are the draw.
		pool := append([]int(nil), present...)
		for i := 0; i < size; i++ {
			j := i + rng.IntN(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		picked = pool[:size]
		sort.Ints(picked)
	}

	values := make([]string, len(picked))
	for i, idx := range picked {
		values[i] = dataset.Text(col.Values[idx])
	}
	return Sample{Values: values, Population: len(present)}
}
