package solver

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

// Solver: 两阶段求解器。
// 如果开启自动分组，先用一次进化搜索把没有固定艇组的队员分成体征均匀的艇组，
// 再用第二次独立的进化搜索为所有艇组安排训练时段；
// 如果不开启自动分组，没有固定艇组的队员每人单独成组，直接进入排期阶段。
type Solver struct {
	params    *Parameters
	rowers    []*domain.Rower
	numTraits int

	members   map[int64]*member
	fixed     []*crew   // 固定艇组
	ungrouped []*member // 需要自动分组的队员

	rng *rand.Rand
}

// Result: 求解结束后交给外部导出层的内容
type Result struct {
	Crews   []domain.SchedulingResultCrew
	Fitness domain.FitnessBreakdown

	ClusteringState       string // 为空表示没有执行分组阶段
	ClusteringGenerations int32
	SchedulingState       string
	SchedulingGenerations int32
}

func New(params *Parameters, rowers []*domain.Rower, crews []*domain.Crew, submissions []*domain.AvailabilitySubmission) (*Solver, error) {
	if err := validateParameters(params); err != nil {
		return nil, err
	}

	s := &Solver{
		params:  params,
		rowers:  rowers,
		members: make(map[int64]*member),
		rng:     rand.New(rand.NewSource(params.RandomSeed)),
	}

	// 检查所有队员的体征维数是否一致
	s.numTraits = -1
	for _, rower := range rowers {
		if s.numTraits == -1 {
			s.numTraits = len(rower.Traits)
		} else if len(rower.Traits) != s.numTraits {
			return nil, fmt.Errorf("队员 %d 的体征维数和其他队员不一致", rower.ID)
		}
	}
	if s.numTraits == -1 {
		s.numTraits = 0
	}

	// 体征权重的维数必须和体征向量一致
	if len(params.TraitWeights) > 0 {
		if len(params.TraitWeights) != s.numTraits {
			return nil, fmt.Errorf("体征权重的维数 %d 和队员的体征维数 %d 不一致", len(params.TraitWeights), s.numTraits)
		}
		total := 0.0
		for _, weight := range params.TraitWeights {
			if weight < 0 {
				return nil, errors.New("体征权重不能为负数")
			}
			total += weight
		}
		if total == 0 {
			return nil, errors.New("体征权重不能全为 0")
		}
	}

	// 构建每个队员的空闲表
	numOptions := params.NumDays * params.TimeslotsPerDay
	availByRower := make(map[int64][]bool)
	for _, submission := range submissions {
		avail := make([]bool, numOptions)
		for _, item := range submission.Items {
			for _, timeslot := range item.Timeslots {
				if item.Day < 1 || item.Day > params.NumDays || timeslot < 1 || timeslot > params.TimeslotsPerDay {
					return nil, fmt.Errorf("队员 %d 提交的时段 (%d, %d) 超出了训练周期的范围", submission.RowerID, item.Day, timeslot)
				}
				avail[(item.Day-1)*params.TimeslotsPerDay+(timeslot-1)] = true
			}
		}
		availByRower[submission.RowerID] = avail
	}

	// 构建求解器内部的队员视图，没有提交空闲时间的队员视为全程没空，
	// 这不是错误，只会拉低排期分数
	averages, stdevs := traitDistribution(rowers, s.numTraits)
	for _, rower := range rowers {
		avail := availByRower[rower.ID]
		if avail == nil {
			avail = make([]bool, numOptions)
		}
		s.members[rower.ID] = &member{
			id:     rower.ID,
			avail:  avail,
			traits: normalizeTraits(rower.Traits, averages, stdevs),
		}
	}

	// 构建固定艇组
	grouped := make(map[int64]bool)
	for _, c := range crews {
		fixed := &crew{
			id:   &c.ID,
			name: c.Name,
		}
		for _, memberID := range c.MemberIDs {
			m, exists := s.members[memberID]
			if !exists {
				return nil, fmt.Errorf("艇组 %s 的成员 %d 不在传入的队员名单中", c.Name, memberID)
			}
			if grouped[memberID] {
				return nil, fmt.Errorf("队员 %d 同时属于多个艇组", memberID)
			}
			grouped[memberID] = true
			fixed.members = append(fixed.members, m)
		}
		if len(fixed.members) == 0 {
			return nil, fmt.Errorf("艇组 %s 没有成员", c.Name)
		}
		s.fixed = append(s.fixed, fixed)
	}

	// 剩下的队员需要自动分组或者单独成组
	for _, rower := range rowers {
		if !grouped[rower.ID] {
			s.ungrouped = append(s.ungrouped, s.members[rower.ID])
		}
	}

	if params.ClusteringEnabled && len(s.ungrouped) > 0 {
		if params.CrewSize <= 0 {
			return nil, errors.New("开启自动分组时每组人数必须大于 0")
		}
		if len(s.ungrouped)%int(params.CrewSize) != 0 {
			return nil, fmt.Errorf("待分组的队员数 %d 不能被每组人数 %d 整除", len(s.ungrouped), params.CrewSize)
		}
	}

	// 检查要安排的训练数是否超出了船位容量
	numCrews := s.totalCrews()
	if numCrews == 0 {
		return nil, errors.New("没有可排期的艇组")
	}
	totalToAssign := numCrews * params.CoursesPerCrew
	totalOptions := numOptions * params.BoatsPerSlot
	if totalToAssign > totalOptions {
		return nil, fmt.Errorf("要安排的训练数 %d 超出了可用的船位数 %d，请调整参数后重试", totalToAssign, totalOptions)
	}

	return s, nil
}

func validateParameters(params *Parameters) error {
	switch {
	case params.NumDays <= 0 || params.TimeslotsPerDay <= 0:
		return errors.New("训练周期的天数和每天的时段数必须大于 0")
	case params.BoatsPerSlot <= 0:
		return errors.New("每个时段的船数必须大于 0")
	case params.CoursesPerCrew <= 0:
		return errors.New("每个艇组的训练次数必须大于 0")
	case params.PopulationSize < 1:
		return errors.New("种群大小必须大于 0")
	case params.TournamentSize < 1 || params.TournamentSize > params.PopulationSize:
		return errors.New("锦标赛参赛数量必须在 1 和种群大小之间")
	case params.CrossoverRate < 0 || params.CrossoverRate > 1:
		return errors.New("交叉概率必须在 0 和 1 之间")
	case params.MutationRate < 0 || params.MutationRate > 1:
		return errors.New("变异概率必须在 0 和 1 之间")
	case params.MaxGenerations < 0:
		return errors.New("最大迭代次数不能为负数")
	case params.ConvergenceWindow < 0 || params.ConvergenceEpsilon < 0:
		return errors.New("收敛窗口和收敛阈值不能为负数")
	case params.MinAvailabilityThreshold < 0 || params.MinAvailabilityThreshold > 1:
		return errors.New("最低到场率阈值必须在 0 和 1 之间")
	case params.PenaltyWeights.SameDay < 0 || params.PenaltyWeights.LowAvailability < 0:
		return errors.New("惩罚系数不能为负数")
	case params.AssignmentWeight < 0 || params.SchedulingWeight < 0:
		return errors.New("分数权重不能为负数")
	case params.AssignmentWeight+params.SchedulingWeight == 0:
		return errors.New("分数权重不能全为 0")
	}
	return nil
}

// totalCrews 返回排期阶段的艇组总数
func (s *Solver) totalCrews() int32 {
	numCrews := int32(len(s.fixed))
	if s.params.ClusteringEnabled && s.params.CrewSize > 0 {
		numCrews += int32(len(s.ungrouped)) / s.params.CrewSize
	} else {
		numCrews += int32(len(s.ungrouped))
	}
	return numCrews
}

// UnavailableRowers 返回全程没有空闲时间的队员，导出层可以用它来输出告警
func (s *Solver) UnavailableRowers() []int64 {
	var ids []int64
	for _, rower := range s.rowers {
		m := s.members[rower.ID]
		available := false
		for _, ok := range m.avail {
			if ok {
				available = true
				break
			}
		}
		if !available {
			ids = append(ids, rower.ID)
		}
	}
	return ids
}

func (s *Solver) Solve() (*Result, error) {
	result := &Result{
		Fitness: domain.FitnessBreakdown{AssignmentScore: 1.0},
	}

	// 第一阶段：自动分组
	var generated []*crew
	clustered := false
	if s.params.ClusteringEnabled && len(s.ungrouped) > 0 {
		generated = s.runClustering(result)
		clustered = true
	} else {
		// 不开启自动分组时剩余的队员每人单独成组
		for _, m := range s.ungrouped {
			generated = append(generated, &crew{
				name:    fmt.Sprintf("队员 %d", m.id),
				members: []*member{m},
			})
		}
	}

	// 第二阶段：排期
	crews := append(append([]*crew{}, s.fixed...), generated...)
	s.runScheduling(crews, result)

	// 没有执行分组阶段时总分就是排期分数，固定为 1.0 的分组分数不应该稀释总分
	if clustered {
		result.Fitness.Score = s.combinedScore(result.Fitness.AssignmentScore, result.Fitness.SchedulingScore)
	} else {
		result.Fitness.Score = result.Fitness.SchedulingScore
	}
	return result, nil
}

// runClustering 运行分组阶段的进化循环并把最优解物化为艇组
func (s *Solver) runClustering(result *Result) []*crew {
	numCrews := int32(len(s.ungrouped)) / s.params.CrewSize

	// 基因多重集合：每个生成艇组的编号重复「每组人数」次
	canonical := make([]int32, 0, len(s.ungrouped))
	for c := int32(0); c < numCrews; c++ {
		for i := int32(0); i < s.params.CrewSize; i++ {
			canonical = append(canonical, c)
		}
	}

	evaluate := func(ch *chromosome) float64 {
		return s.assignmentScore(s.materializeClusters(ch, numCrews))
	}

	loop := newEvolutionLoop(s.params, canonical, evaluate, s.rng)
	best := loop.run()

	result.ClusteringState = loop.state.String()
	result.ClusteringGenerations = loop.generations
	result.Fitness.AssignmentScore = best.fitness

	var generated []*crew
	for c, members := range s.materializeClusters(best, numCrews) {
		generated = append(generated, &crew{
			name:    fmt.Sprintf("自动分组 %d", c+1),
			members: members,
		})
	}
	return generated
}

func (s *Solver) materializeClusters(ch *chromosome, numCrews int32) [][]*member {
	clusters := make([][]*member, numCrews)
	for c, indexes := range decodeClusters(ch, numCrews) {
		for _, i := range indexes {
			clusters[c] = append(clusters[c], s.ungrouped[i])
		}
	}
	return clusters
}

// runScheduling 运行排期阶段的进化循环并把最优解解码进结果
func (s *Solver) runScheduling(crews []*crew, result *Result) {
	numCrews := int32(len(crews))
	numOptions := s.params.NumDays * s.params.TimeslotsPerDay

	// 基因多重集合：每个时段的编号重复「船数」次
	canonical := make([]int32, 0, numOptions*s.params.BoatsPerSlot)
	for o := int32(0); o < numOptions; o++ {
		for b := int32(0); b < s.params.BoatsPerSlot; b++ {
			canonical = append(canonical, o)
		}
	}

	evaluate := func(ch *chromosome) float64 {
		score, _, _ := s.schedulingScore(decodeSchedule(ch, numCrews, s.params.CoursesPerCrew), crews)
		return score
	}

	loop := newEvolutionLoop(s.params, canonical, evaluate, s.rng)
	best := loop.run()

	result.SchedulingState = loop.state.String()
	result.SchedulingGenerations = loop.generations

	assignments := decodeSchedule(best, numCrews, s.params.CoursesPerCrew)
	score, sameDayPenalty, lowAvailPenalty := s.schedulingScore(assignments, crews)
	result.Fitness.SchedulingScore = score
	result.Fitness.SameDayPenalty = sameDayPenalty
	result.Fitness.LowAvailabilityPenalty = lowAvailPenalty

	// 把最优解解码为每个艇组的训练安排
	result.Crews = make([]domain.SchedulingResultCrew, numCrews)
	for c, crew := range crews {
		resultCrew := domain.SchedulingResultCrew{
			CrewID:    crew.id,
			Name:      crew.name,
			MemberIDs: make([]int64, 0, len(crew.members)),
			Sessions:  make([]domain.SchedulingResultSession, 0, s.params.CoursesPerCrew),
		}
		for _, m := range crew.members {
			resultCrew.MemberIDs = append(resultCrew.MemberIDs, m.id)
		}
		for _, option := range assignments[c] {
			resultCrew.Sessions = append(resultCrew.Sessions, domain.SchedulingResultSession{
				Day:      option/s.params.TimeslotsPerDay + 1,
				Timeslot: option%s.params.TimeslotsPerDay + 1,
			})
		}
		result.Crews[c] = resultCrew
	}
}

// traitDistribution 计算每个体征维度在全体队员中的平均值和标准差
func traitDistribution(rowers []*domain.Rower, numTraits int) ([]float64, []float64) {
	averages := make([]float64, numTraits)
	stdevs := make([]float64, numTraits)
	if len(rowers) == 0 || numTraits == 0 {
		return averages, stdevs
	}

	for t := 0; t < numTraits; t++ {
		for _, rower := range rowers {
			averages[t] += rower.Traits[t]
		}
		averages[t] /= float64(len(rowers))

		variance := 0.0
		for _, rower := range rowers {
			variance += math.Pow(rower.Traits[t]-averages[t], 2)
		}
		stdevs[t] = math.Sqrt(variance / float64(len(rowers)))
	}

	return averages, stdevs
}

// normalizeTraits 把体征向量标准化到各自的分布上，
// 某个维度所有人都相同时（标准差为 0）该维度统一取 0
func normalizeTraits(traits []float64, averages []float64, stdevs []float64) []float64 {
	normalized := make([]float64, len(traits))
	for t := range traits {
		if stdevs[t] == 0 {
			normalized[t] = 0
			continue
		}
		normalized[t] = (traits[t] - averages[t]) / stdevs[t]
	}
	return normalized
}
