package solver

import "math/rand"

// tournamentSelect 使用锦标赛选择：从种群中不放回地抽取 k 条染色体，
// 返回其中适应度最高的那条的拷贝
func tournamentSelect(pop []*chromosome, k int32, rng *rand.Rand) *chromosome {
	perm := rng.Perm(len(pop))

	best := pop[perm[0]]
	for i := int32(1); i < k && int(i) < len(perm); i++ {
		candidate := pop[perm[i]]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}

	return best.clone()
}

// orderCrossover 顺序交叉：随机选择两个切点，把父本 A 切点之间的片段原样复制到
// 子代的相同位置，剩余位置按照父本 B 中基因出现的顺序，用还没有用完的基因填充。
// 这样子代仍然是同一个多重集合的排列。
func orderCrossover(a *chromosome, b *chromosome, rng *rand.Rand) (*chromosome, *chromosome) {
	length := len(a.genes)
	if length != len(b.genes) {
		// 两条染色体来自同一个多重集合，长度一定相等，这里只是以防万一
		return a.clone(), b.clone()
	}

	cut1 := rng.Intn(length)
	cut2 := rng.Intn(length)
	if cut1 > cut2 {
		cut1, cut2 = cut2, cut1
	}

	child1 := crossoverChild(a, b, cut1, cut2)
	child2 := crossoverChild(b, a, cut1, cut2)
	return child1, child2
}

// crossoverChild 生成一个子代：[cut1, cut2) 来自 segment 父本，其余来自 filler 父本
func crossoverChild(segment *chromosome, filler *chromosome, cut1 int, cut2 int) *chromosome {
	length := len(segment.genes)
	genes := make([]int32, length)

	// 统计片段中已经用掉的基因数量
	used := make(map[int32]int)
	for i := cut1; i < cut2; i++ {
		genes[i] = segment.genes[i]
		used[segment.genes[i]]++
	}

	// 按 filler 中的顺序填充剩余位置
	pos := 0
	if cut1 == 0 {
		pos = cut2
	}
	for _, g := range filler.genes {
		if used[g] > 0 {
			used[g]--
			continue
		}
		genes[pos] = g
		pos++
		if pos == cut1 {
			pos = cut2
		}
		if pos >= length {
			break
		}
	}

	return &chromosome{genes: genes}
}

// swapMutate 交换变异：每个基因位以 rate 的概率和另一个随机位置交换，
// 交换不会改变基因的多重集合
func swapMutate(ch *chromosome, rate float64, rng *rand.Rand) {
	length := len(ch.genes)
	if length < 2 {
		return
	}

	mutated := false
	for i := 0; i < length; i++ {
		if rng.Float64() >= rate {
			continue
		}

		j := rng.Intn(length - 1)
		if j >= i {
			j++
		}
		ch.genes[i], ch.genes[j] = ch.genes[j], ch.genes[i]
		mutated = true
	}

	if mutated {
		ch.evaluated = false
	}
}
