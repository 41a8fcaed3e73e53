package solver

import "math/rand"

// Chromosome: 一个候选解，编码为固定多重集合的一个排列。
// 排期问题中基因是时段编号（每个时段重复「船数」次），
// 分组问题中基因是艇组编号（每个艇组重复「组员数」次）。
// 所有算子都只会重排基因而不会改变基因的多重集合，
// 因此任何染色体都天然合法，不需要修复步骤。
type chromosome struct {
	genes     []int32
	fitness   float64
	evaluated bool
}

// randomChromosome 把给定的多重集合随机打乱，生成一条初始染色体
func randomChromosome(canonical []int32, rng *rand.Rand) *chromosome {
	genes := make([]int32, len(canonical))
	copy(genes, canonical)
	rng.Shuffle(len(genes), func(i, j int) {
		genes[i], genes[j] = genes[j], genes[i]
	})
	return &chromosome{genes: genes}
}

func (ch *chromosome) clone() *chromosome {
	genes := make([]int32, len(ch.genes))
	copy(genes, ch.genes)
	return &chromosome{
		genes:     genes,
		fitness:   ch.fitness,
		evaluated: ch.evaluated,
	}
}

// decodeSchedule 把染色体解码为每个艇组的训练时段列表。
// 第 i 个基因位对应第 i/coursesPerCrew 个艇组的第 i%coursesPerCrew 次训练，
// 多出来的基因位表示没有被使用的船位。
func decodeSchedule(ch *chromosome, numCrews int32, coursesPerCrew int32) [][]int32 {
	assignments := make([][]int32, numCrews)
	for c := int32(0); c < numCrews; c++ {
		assignments[c] = make([]int32, coursesPerCrew)
		for j := int32(0); j < coursesPerCrew; j++ {
			assignments[c][j] = ch.genes[c*coursesPerCrew+j]
		}
	}
	return assignments
}

// decodeClusters 把分组染色体解码为每个生成艇组的成员下标列表。
// 第 i 个基因位的值就是第 i 个待分组队员所属的艇组编号。
func decodeClusters(ch *chromosome, numCrews int32) [][]int32 {
	clusters := make([][]int32, numCrews)
	for i, g := range ch.genes {
		clusters[g] = append(clusters[g], int32(i))
	}
	return clusters
}
