package utils

import "runtime"

/*
PartitionMap splits a linear index range [0, MaxIndex) into ParallelDegree
contiguous buckets of nearly equal size. Each worker goroutine owns one
bucket, so per-vertex and per-edge loops can run in parallel with no shared
writes inside a bucket and a deterministic recombination order across
buckets.
*/
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each partition
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree <= 0 {
		ParallelDegree = runtime.NumCPU()
	}
	if ParallelDegree > maxIndex {
		ParallelDegree = maxIndex
	}
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
		base      int
	)
	// The first [remainder] buckets receive one extra index
	if threadNum < remainder {
		base = threadNum * (Npart + 1)
		bucket[0] = base
		bucket[1] = base + Npart + 1
	} else {
		base = remainder*(Npart+1) + (threadNum-remainder)*Npart
		bucket[0] = base
		bucket[1] = base + Npart
	}
	return
}

func (pm *PartitionMap) GetBucketRange(threadNum int) (min, max int) {
	min, max = pm.Partitions[threadNum][0], pm.Partitions[threadNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(threadNum int) (size int) {
	size = pm.Partitions[threadNum][1] - pm.Partitions[threadNum][0]
	return
}
