package model

// combinations visits every r-subset of 0..n-1 in lexicographic
// order. The visited slice is reused between calls.
func combinations(n, r uint64, visit func([]uint64)) {
	if r > n {
		return
	}
	subset := make([]uint64, r)
	var walk func(start, depth uint64)
	walk = func(start, depth uint64) {
		if depth == r {
			visit(subset)
			return
		}
		for value := start; value+r-depth <= n; value++ {
			subset[depth] = value
			walk(value+1, depth+1)
		}
	}
	walk(0, 0)
}

// permutations visits every ordering of the given values. The visited
// slice is reused between calls.
func permutations(values []uint64, visit func([]uint64)) {
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(values) {
			visit(values)
			return
		}
		for i := depth; i < len(values); i++ {
			values[depth], values[i] = values[i], values[depth]
			walk(depth + 1)
			values[depth], values[i] = values[i], values[depth]
		}
	}
	walk(0)
}
