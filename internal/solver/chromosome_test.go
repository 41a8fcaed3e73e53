package solver

import (
	"math/rand"
	"testing"
)

// geneMultiset 统计基因的多重集合
func geneMultiset(genes []int32) map[int32]int {
	counts := make(map[int32]int)
	for _, g := range genes {
		counts[g]++
	}
	return counts
}

func sameMultiset(a []int32, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	counts := geneMultiset(a)
	for _, g := range b {
		counts[g]--
		if counts[g] < 0 {
			return false
		}
	}
	return true
}

func TestRandomChromosomePreservesMultiset(t *testing.T) {
	canonical := []int32{0, 0, 1, 1, 2, 2, 3, 3}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ch := randomChromosome(canonical, rng)
		if !sameMultiset(canonical, ch.genes) {
			t.Fatalf("种子 %d 生成的染色体不是原多重集合的排列: %v", seed, ch.genes)
		}
	}
}

func TestRandomChromosomeDoesNotModifyCanonical(t *testing.T) {
	canonical := []int32{0, 1, 2, 3, 4, 5}
	rng := rand.New(rand.NewSource(1))
	randomChromosome(canonical, rng)

	for i, g := range canonical {
		if g != int32(i) {
			t.Fatalf("原多重集合被修改了: %v", canonical)
		}
	}
}

func TestDecodeSchedulePositionMapping(t *testing.T) {
	ch := &chromosome{genes: []int32{5, 3, 1, 4, 0, 2}}

	assignments := decodeSchedule(ch, 2, 2)

	if len(assignments) != 2 {
		t.Fatalf("期望 2 个艇组，实际 %d", len(assignments))
	}
	if assignments[0][0] != 5 || assignments[0][1] != 3 {
		t.Fatalf("艇组 0 的安排不正确: %v", assignments[0])
	}
	if assignments[1][0] != 1 || assignments[1][1] != 4 {
		t.Fatalf("艇组 1 的安排不正确: %v", assignments[1])
	}
}

func TestDecodeClusters(t *testing.T) {
	ch := &chromosome{genes: []int32{1, 0, 1, 0}}

	clusters := decodeClusters(ch, 2)

	if len(clusters) != 2 {
		t.Fatalf("期望 2 个艇组，实际 %d", len(clusters))
	}
	if len(clusters[0]) != 2 || clusters[0][0] != 1 || clusters[0][1] != 3 {
		t.Fatalf("艇组 0 的成员不正确: %v", clusters[0])
	}
	if len(clusters[1]) != 2 || clusters[1][0] != 0 || clusters[1][1] != 2 {
		t.Fatalf("艇组 1 的成员不正确: %v", clusters[1])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := &chromosome{genes: []int32{1, 2, 3}, fitness: 0.5, evaluated: true}
	copied := original.clone()

	copied.genes[0] = 9
	if original.genes[0] != 1 {
		t.Fatal("修改拷贝不应该影响原染色体")
	}
	if copied.fitness != 0.5 || !copied.evaluated {
		t.Fatal("拷贝应该保留适应度缓存")
	}
}
