package shuffle

import "github.com/KirkDiggler/trickroom/internal/random"

// Shuffle returns a uniformly shuffled copy of seq. The caller's slice is
// left untouched.
func Shuffle[T any](src random.Source, seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	src.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Chunk splits seq into groups of size. Once fewer than two full groups
// remain, everything left becomes the final group, so only the last group can
// be longer than size and none is shorter unless seq itself is.
func Chunk[T any](seq []T, size int) [][]T {
	if len(seq) == 0 {
		return [][]T{}
	}
	if size < 1 {
		return [][]T{clone(seq)}
	}

	chunks := make([][]T, 0, len(seq)/size+1)
	for i := 0; i < len(seq); i += size {
		if len(seq)-i < 2*size {
			chunks = append(chunks, clone(seq[i:]))
			break
		}
		chunks = append(chunks, clone(seq[i:i+size]))
	}
	return chunks
}

// Groups splits seq into full groups of size and drops any remainder
func Groups[T any](seq []T, size int) [][]T {
	if size < 1 {
		return [][]T{}
	}

	groups := make([][]T, 0, len(seq)/size)
	for i := 0; i+size <= len(seq); i += size {
		groups = append(groups, clone(seq[i:i+size]))
	}
	return groups
}

func clone[T any](seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	return out
}
