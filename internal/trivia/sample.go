package trivia

// Source is the uniform random source used for sampling.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Sample draws up to n questions from bank without replacement.
// The bank is not modified; a bank smaller than n yields all of it, shuffled.
func Sample(bank []Question, n int, rng Source) []Question {
	pool := append([]Question(nil), bank...)
	if n > len(pool) {
		n = len(pool)
	}
	// partial Fisher–Yates: only the first n slots need to be settled
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
