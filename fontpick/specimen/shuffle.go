package specimen

import "math/rand"

// Shuffle returns a random permutation of [0, n). When avoidFirst is a
// valid index and n > 1, the permutation never starts with it.
func Shuffle(rng *rand.Rand, n, avoidFirst int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	if n > 1 && order[0] == avoidFirst {
		j := 1 + rng.Intn(n-1)
		order[0], order[j] = order[j], order[0]
	}
	return order
}
