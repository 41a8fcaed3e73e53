package solver

import "math/rand"

type loopState int32

const (
	stateInitialized loopState = iota
	stateEvolving
	stateConverged
	stateExhausted
)

func (s loopState) String() string {
	switch s {
	case stateInitialized:
		return "initialized"
	case stateEvolving:
		return "evolving"
	case stateConverged:
		return "converged"
	case stateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// evolutionLoop: 单个进化过程，管理一代代的种群并记录历史最优解。
// 整个过程是严格串行的，因为每一代都完全依赖上一代的评估结果。
type evolutionLoop struct {
	params   *Parameters
	evaluate func(*chromosome) float64
	rng      *rand.Rand

	population  []*chromosome
	best        *chromosome
	state       loopState
	generations int32
	stale       int32 // 连续没有明显提升的代数
}

// newEvolutionLoop 生成随机初始种群并完成第 0 代的评估
func newEvolutionLoop(params *Parameters, canonical []int32, evaluate func(*chromosome) float64, rng *rand.Rand) *evolutionLoop {
	l := &evolutionLoop{
		params:   params,
		evaluate: evaluate,
		rng:      rng,
	}

	l.population = make([]*chromosome, params.PopulationSize)
	for i := range l.population {
		l.population[i] = randomChromosome(canonical, rng)
		l.evaluateChromosome(l.population[i])

		if l.best == nil || l.population[i].fitness > l.best.fitness {
			l.best = l.population[i].clone()
		}
	}

	l.state = stateInitialized
	return l
}

func (l *evolutionLoop) evaluateChromosome(ch *chromosome) {
	if ch.evaluated {
		return
	}
	ch.fitness = l.evaluate(ch)
	ch.evaluated = true
}

// run 运行进化循环直到收敛或者达到最大代数，返回历史最优染色体。
// 即使最大代数为 0，第 0 代的评估结果也已经产生，仍然会返回有效的解。
func (l *evolutionLoop) run() *chromosome {
	l.state = stateEvolving

	for gen := int32(0); gen < l.params.MaxGenerations; gen++ {
		previousBest := l.best.fitness

		// 选择：用锦标赛选出下一代的父本
		parents := make([]*chromosome, l.params.PopulationSize)
		for i := range parents {
			parents[i] = tournamentSelect(l.population, l.params.TournamentSize, l.rng)
		}

		// 交叉：相邻的父本两两配对
		for i := 0; i+1 < len(parents); i += 2 {
			if l.rng.Float64() < l.params.CrossoverRate {
				parents[i], parents[i+1] = orderCrossover(parents[i], parents[i+1], l.rng)
			}
		}

		// 变异
		for _, child := range parents {
			swapMutate(child, l.params.MutationRate, l.rng)
		}

		// 精英保留：历史最优解总是原样进入下一代，保证最优适应度不会回退
		parents[0] = l.best.clone()

		// 评估新一代并更新历史最优解
		for _, child := range parents {
			l.evaluateChromosome(child)
			if child.fitness > l.best.fitness {
				l.best = child.clone()
			}
		}

		l.population = parents
		l.generations = gen + 1

		// 收敛判断：连续若干代都没有明显提升就提前结束
		if l.best.fitness-previousBest > l.params.ConvergenceEpsilon {
			l.stale = 0
		} else {
			l.stale++
		}

		if l.params.ConvergenceWindow > 0 && l.stale >= l.params.ConvergenceWindow {
			l.state = stateConverged
			return l.best
		}
	}

	l.state = stateExhausted
	return l.best
}
