package solver

import (
	"math/rand"
	"testing"
)

func TestTournamentSelectPicksBestWithFullTournament(t *testing.T) {
	pop := []*chromosome{
		{genes: []int32{0}, fitness: 0.2, evaluated: true},
		{genes: []int32{1}, fitness: 0.9, evaluated: true},
		{genes: []int32{2}, fitness: 0.5, evaluated: true},
	}

	// 参赛数量等于种群大小时一定选出最优者
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		winner := tournamentSelect(pop, 3, rng)
		if winner.fitness != 0.9 {
			t.Fatalf("期望选出适应度 0.9 的染色体，实际 %f", winner.fitness)
		}
	}
}

func TestTournamentSelectReturnsCopy(t *testing.T) {
	pop := []*chromosome{{genes: []int32{1, 2}, fitness: 1, evaluated: true}}
	rng := rand.New(rand.NewSource(1))

	winner := tournamentSelect(pop, 1, rng)
	winner.genes[0] = 9

	if pop[0].genes[0] != 1 {
		t.Fatal("修改选择结果不应该影响种群中的染色体")
	}
}

func TestOrderCrossoverPreservesMultiset(t *testing.T) {
	canonical := []int32{0, 0, 1, 1, 2, 2, 3, 3, 4, 4}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		a := randomChromosome(canonical, rng)
		b := randomChromosome(canonical, rng)

		child1, child2 := orderCrossover(a, b, rng)

		if !sameMultiset(canonical, child1.genes) {
			t.Fatalf("种子 %d 的子代 1 不是原多重集合的排列: %v", seed, child1.genes)
		}
		if !sameMultiset(canonical, child2.genes) {
			t.Fatalf("种子 %d 的子代 2 不是原多重集合的排列: %v", seed, child2.genes)
		}
	}
}

func TestCrossoverChildKeepsSegmentAndFillsFromOtherParent(t *testing.T) {
	a := &chromosome{genes: []int32{0, 1, 2, 3, 4}}
	b := &chromosome{genes: []int32{4, 3, 2, 1, 0}}

	// [1, 3) 来自 a，其余位置按 b 中的顺序填充
	child := crossoverChild(a, b, 1, 3)

	expected := []int32{4, 1, 2, 3, 0}
	for i, g := range expected {
		if child.genes[i] != g {
			t.Fatalf("期望 %v，实际 %v", expected, child.genes)
		}
	}
}

func TestSwapMutatePreservesMultiset(t *testing.T) {
	canonical := []int32{0, 0, 1, 1, 2, 2}

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		ch := randomChromosome(canonical, rng)

		swapMutate(ch, 0.5, rng)

		if !sameMultiset(canonical, ch.genes) {
			t.Fatalf("种子 %d 变异后不是原多重集合的排列: %v", seed, ch.genes)
		}
	}
}

func TestSwapMutateInvalidatesFitnessCache(t *testing.T) {
	ch := &chromosome{genes: []int32{0, 1, 2, 3}, fitness: 1, evaluated: true}
	rng := rand.New(rand.NewSource(3))

	// 概率为 1 时每个基因位都会交换
	swapMutate(ch, 1.0, rng)

	if ch.evaluated {
		t.Fatal("变异后的染色体应该重新评估")
	}
}

func TestSwapMutateZeroRateChangesNothing(t *testing.T) {
	ch := &chromosome{genes: []int32{0, 1, 2, 3}, fitness: 1, evaluated: true}
	rng := rand.New(rand.NewSource(3))

	swapMutate(ch, 0, rng)

	for i, g := range ch.genes {
		if g != int32(i) {
			t.Fatalf("概率为 0 时不应该发生交换: %v", ch.genes)
		}
	}
	if !ch.evaluated {
		t.Fatal("没有变异时不应该使缓存失效")
	}
}

func TestOperatorsDeterministicWithSameSeed(t *testing.T) {
	canonical := []int32{0, 1, 2, 3, 4, 5, 6, 7}

	run := func(seed int64) []int32 {
		rng := rand.New(rand.NewSource(seed))
		a := randomChromosome(canonical, rng)
		b := randomChromosome(canonical, rng)
		child, _ := orderCrossover(a, b, rng)
		swapMutate(child, 0.3, rng)
		return child.genes
	}

	first := run(42)
	second := run(42)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("相同种子应该产生完全相同的结果: %v vs %v", first, second)
		}
	}
}
