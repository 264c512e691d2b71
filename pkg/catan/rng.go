package catan

// RNG is the engine's only source of randomness: dice, deck shuffles,
// board layout, and steal selection all flow through it. *math/rand.Rand
// satisfies the interface; each game owns one instance seeded from a
// secure source so a game is replayable given its seed.
type RNG interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// rollDie returns a uniform roll in [1,6].
func rollDie(rng RNG) int {
	return rng.Intn(6) + 1
}
