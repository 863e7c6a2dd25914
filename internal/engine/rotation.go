package engine

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// Rotation matrix bounds. Rosters at or below the lower bound use plain
// round-robin; above the upper bound the square construction is pointless and
// round-robin applies as well.
const (
	rotationMinRoster = 4
	rotationMaxRoster = 26
)

// SeedFor derives the rotation seed from a season identifier. The hash is
// stable across processes so every node builds the same matrix.
func SeedFor(seasonID uint) int64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatUint(uint64(seasonID), 10)))
	return int64(h.Sum64())
}

// UsesMatrix reports whether a roster of size n is sequenced by the latin
// square rather than round-robin.
func UsesMatrix(n int) bool {
	return n >= rotationMinRoster && n <= rotationMaxRoster
}

// Matrix builds the n x n rotation table for the roster. Row i is chain i's
// full player sequence: it starts with roster[i], and every row and every
// column contains each roster member exactly once. The same seed always
// yields the same matrix. Returns nil when the roster size is outside the
// matrix bounds.
func Matrix(seed int64, roster []uint) [][]uint {
	n := len(roster)
	if !UsesMatrix(n) {
		return nil
	}

	// g is a permutation of column offsets with g[0] = 0, so row i is
	// roster shifted by i plus a fixed column shuffle. Both row and column
	// membership stay bijective.
	rng := rand.New(rand.NewSource(seed))
	offsets := make([]int, n-1)
	for i := range offsets {
		offsets[i] = i + 1
	}
	rng.Shuffle(len(offsets), func(i, j int) {
		offsets[i], offsets[j] = offsets[j], offsets[i]
	})
	g := append([]int{0}, offsets...)

	matrix := make([][]uint, n)
	for i := 0; i < n; i++ {
		row := make([]uint, n)
		for k := 0; k < n; k++ {
			row[k] = roster[(i+g[k])%n]
		}
		matrix[i] = row
	}
	return matrix
}

// NextPlayer returns the assignee for position pos+1 of chain row. ok is
// false when the chain has reached its final slot or the roster size is
// outside the matrix bounds.
func NextPlayer(seed int64, roster []uint, row, pos int) (uint, bool) {
	matrix := Matrix(seed, roster)
	if matrix == nil {
		return 0, false
	}
	if row < 0 || row >= len(matrix) {
		return 0, false
	}
	if pos+1 >= len(roster) {
		return 0, false
	}
	return matrix[row][pos+1], true
}

// NextRoundRobin returns the roster member after last, wrapping at the end.
func NextRoundRobin(roster []uint, last uint) (uint, error) {
	for i, id := range roster {
		if id == last {
			return roster[(i+1)%len(roster)], nil
		}
	}
	return 0, ErrPlayerNotInRoster
}
