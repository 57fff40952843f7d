package sat

import "math"

// luby returns the i-th term (0-based) of the Luby restart sequence scaled by
// factor y:
//
//	0: 1
//	1: 1 1 2
//	2: 1 1 2 1 1 2 4
//	3: 1 1 2 1 1 2 4 1 1 2 1 1 2 4 8
//	...
func luby(y float64, x int) float64 {
	// Find the finite subsequence that contains index x, and the size of
	// that subsequence.
	size, seq := 1, 0
	for size < x+1 {
		seq++
		size = 2*size + 1
	}

	for size-1 != x {
		size = (size - 1) >> 1
		seq--
		x = x % size
	}

	return math.Pow(y, float64(seq))
}

// restartLimit returns the conflict budget of the i-th restart (0-based),
// following either the Luby sequence or a geometric progression.
func restartLimit(opts *Options, i int) int {
	var base float64
	if opts.LubyRestart {
		base = luby(opts.RestartInc, i)
	} else {
		base = math.Pow(opts.RestartInc, float64(i))
	}
	return int(base * float64(opts.RestartFirst))
}
