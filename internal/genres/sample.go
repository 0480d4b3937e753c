package genres

import (
	"math/rand/v2"
	"slices"
)

// Sample returns up to count distinct entries of vocabulary in random order.
// Passing a seeded rnd makes the selection reproducible; a nil rnd uses the
// process-wide source.
func Sample(vocabulary []string, count int, rnd *rand.Rand) []string {
	if count <= 0 || len(vocabulary) == 0 {
		return nil
	}

	pool := slices.Clone(vocabulary)
	n := min(count, len(pool))
	for i := 0; i < n; i++ {
		j := i + intN(rnd, len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}

// Pick returns one random entry of options, or the zero value when empty.
func Pick[T any](options []T, rnd *rand.Rand) T {
	var zero T
	if len(options) == 0 {
		return zero
	}
	return options[intN(rnd, len(options))]
}

func intN(rnd *rand.Rand, n int) int {
	if rnd == nil {
		return rand.IntN(n)
	}
	return rnd.IntN(n)
}
