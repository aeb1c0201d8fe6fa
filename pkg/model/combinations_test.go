package model

import (
	"fmt"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestCombinations(t *testing.T) {
	//** Act
	visited := make([][]uint64, 0)
	combinations(5, 2, func(subset []uint64) {
		visited = append(visited, slices.Clone(subset))
	})

	//** Assert
	assert.Len(t, visited, 10)
	assert.Len(t, lo.UniqBy(visited, func(subset []uint64) string {
		return fmt.Sprint(subset)
	}), 10)
	for _, subset := range visited {
		assert.True(t, slices.IsSorted(subset))
		for _, value := range subset {
			assert.Less(t, value, uint64(5))
		}
	}
}

func TestCombinationsEdges(t *testing.T) {
	count := 0
	combinations(3, 0, func(subset []uint64) {
		count++
		assert.Empty(t, subset)
	})
	assert.Equal(t, 1, count)

	combinations(2, 3, func([]uint64) {
		t.Error("no subset should be visited when r exceeds n")
	})
}

func TestPermutations(t *testing.T) {
	//** Act
	visited := make([][]uint64, 0)
	permutations([]uint64{3, 5, 7}, func(ordered []uint64) {
		visited = append(visited, slices.Clone(ordered))
	})

	//** Assert
	assert.Len(t, visited, 6)
	assert.Len(t, lo.UniqBy(visited, func(ordered []uint64) string {
		return fmt.Sprint(ordered)
	}), 6)
	for _, ordered := range visited {
		sorted := slices.Clone(ordered)
		slices.Sort(sorted)
		assert.Equal(t, []uint64{3, 5, 7}, sorted)
	}
}
