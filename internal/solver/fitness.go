package solver

import "math"

// scoreBreakdown: 一次评估的各项分数，用于诊断
type scoreBreakdown struct {
	scheduling      float64
	assignment      float64
	sameDayPenalty  float64
	lowAvailPenalty float64
}

/**
 * 计算排期分数
 * 对每一个 (艇组, 训练) 计算到场率 = 有空的成员数 / 成员总数，
 * 把所有到场率相加后除以理论最大值（艇组数 x 每组训练次数）得到 [0,1] 之间的分数，
 * 再减去两种惩罚:
 * 		1. 同一艇组一天内被安排多次训练
 * 		2. 某次训练的到场率低于阈值
 * 扣分后的结果不会低于 0
 */
func (s *Solver) schedulingScore(assignments [][]int32, crews []*crew) (float64, float64, float64) {
	if len(crews) == 0 {
		return 0, 0, 0
	}

	total := 0.0
	sameDayPenalty := 0.0
	lowAvailPenalty := 0.0

	for c, crew := range crews {
		dayCount := make(map[int32]int32)

		for _, option := range assignments[c] {
			// 没有任何成员有空时到场率就是 0，这不是错误
			fraction := float64(crew.availability(option)) / float64(len(crew.members))
			total += fraction

			if fraction < s.params.MinAvailabilityThreshold {
				lowAvailPenalty += s.params.PenaltyWeights.LowAvailability
			}

			dayCount[option/s.params.TimeslotsPerDay]++
		}

		// 同一天被安排了多次训练的艇组要扣分
		for _, count := range dayCount {
			if count > 1 {
				sameDayPenalty += s.params.PenaltyWeights.SameDay
				break
			}
		}
	}

	maximum := float64(len(crews)) * float64(s.params.CoursesPerCrew)
	score := total/maximum - sameDayPenalty - lowAvailPenalty
	return math.Max(0, score), sameDayPenalty, lowAvailPenalty
}

/**
 * 计算分组分数
 * 对每个生成的艇组，按体征维度计算成员标准化体征与组内平均值的平均偏差，
 * 偏差越小艇组越均匀，每组分数 = 1 - min(1, 平均偏差)，
 * 所有组的平均值就是分组分数，1 表示所有艇组完全均匀。
 * 没有体征数据或所有队员体征完全相同时分数恰好为 1。
 */
func (s *Solver) assignmentScore(clusters [][]*member) float64 {
	if len(clusters) == 0 {
		return 1.0
	}

	total := 0.0
	for _, members := range clusters {
		total += 1.0 - math.Min(1.0, clusterPenalty(members, s.numTraits, s.params.TraitWeights))
	}

	return total / float64(len(clusters))
}

// clusterPenalty 计算一个艇组的体征离散程度，返回各维度平均偏差的加权均值，
// weights 为空时各维等权
func clusterPenalty(members []*member, numTraits int, weights []float64) float64 {
	if numTraits == 0 || len(members) == 0 {
		return 0.0
	}

	penalty := 0.0
	totalWeight := 0.0
	for t := 0; t < numTraits; t++ {
		weight := 1.0
		if len(weights) > 0 {
			weight = weights[t]
		}
		totalWeight += weight
		if weight == 0 {
			continue
		}

		average := 0.0
		for _, m := range members {
			average += m.traits[t]
		}
		average /= float64(len(members))

		deviation := 0.0
		for _, m := range members {
			deviation += math.Abs(m.traits[t] - average)
		}
		penalty += weight * deviation / float64(len(members))
	}
	if totalWeight == 0 {
		return 0.0
	}

	return penalty / totalWeight
}

// combinedScore 把分组分数和排期分数按权重合成一个总分，
// 除以最大可达分数使得不同运行之间的总分可以直接比较
func (s *Solver) combinedScore(assignment float64, scheduling float64) float64 {
	return (s.params.AssignmentWeight*assignment + s.params.SchedulingWeight*scheduling) /
		(s.params.AssignmentWeight + s.params.SchedulingWeight)
}
