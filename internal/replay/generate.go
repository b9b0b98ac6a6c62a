package replay

import (
	"math/rand/v2"
	"strconv"

	"github.com/joshuapare/memkit/internal/trace"
)

var benchAlignments = []int{0, 8, 16, 64}

// Generate builds a pseudo-random alloc/free workload of n operations. Sizes
// are uniform in [1, maxSize]. Roughly half the operations free a random live
// id once any exist. The same seed always yields the same trace.
func Generate(n, maxSize int, seed uint64) []trace.Op {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	maxSize = max(maxSize, 1)

	ops := make([]trace.Op, 0, n)
	var live []string
	next := 0
	for i := range n {
		if len(live) > 0 && rng.IntN(2) == 0 {
			j := rng.IntN(len(live))
			ops = append(ops, trace.Op{Kind: trace.Free, ID: live[j], Line: i + 1})
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		id := "o" + strconv.Itoa(next)
		next++
		ops = append(ops, trace.Op{
			Kind:  trace.Alloc,
			ID:    id,
			Size:  1 + rng.IntN(maxSize),
			Align: benchAlignments[rng.IntN(len(benchAlignments))],
			Line:  i + 1,
		})
		live = append(live, id)
	}
	return ops
}
