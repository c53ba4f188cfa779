package utils

type Index []int

func NewIndex(N int) (I Index) {
	I = make(Index, N)
	return
}

// NewRange yields the index values [min, max] inclusive.
func NewRange(min, max int) (I Index) {
	I = make(Index, max-min+1)
	for i := range I {
		I[i] = i + min
	}
	return
}

func (I Index) Contains(i int) bool {
	for _, ind := range I {
		if ind == i {
			return true
		}
	}
	return false
}
