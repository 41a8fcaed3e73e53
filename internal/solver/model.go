package solver

// PenaltyWeights: 各项惩罚的扣分系数
type PenaltyWeights struct {
	SameDay         float64 `json:"sameDay"`         // 同一艇组一天内被安排多次训练的惩罚
	LowAvailability float64 `json:"lowAvailability"` // 到场率低于阈值的惩罚
}

// 遗传算法参数
type Parameters struct {
	NumDays                  int32          // 训练周期天数
	TimeslotsPerDay          int32          // 每天时段数
	BoatsPerSlot             int32          // 每个时段可同时出航的船数
	CoursesPerCrew           int32          // 每个艇组需要安排的训练次数
	CrewSize                 int32          // 自动分组时每个艇组的人数
	PopulationSize           int32          // 种群大小
	CrossoverRate            float64        // 交叉概率
	MutationRate             float64        // 变异概率（每个基因位）
	TournamentSize           int32          // 锦标赛选择的参赛数量
	MaxGenerations           int32          // 最大迭代次数
	ConvergenceWindow        int32          // 连续多少代没有明显提升则认为收敛，0 表示不做收敛判断
	ConvergenceEpsilon       float64        // 判断提升是否明显的阈值
	MinAvailabilityThreshold float64        // 到场率低于该值时扣分
	PenaltyWeights           PenaltyWeights // 惩罚系数
	TraitWeights             []float64      // 每个体征维度在分组分数中的权重，空表示各维等权
	AssignmentWeight         float64        // 分组分数的权重
	SchedulingWeight         float64        // 排期分数的权重
	ClusteringEnabled        bool           // 是否对没有固定艇组的队员进行自动分组
	RandomSeed               int64          // 随机种子，相同的种子和输入会产生完全相同的结果
}

// member: 求解器内部的队员视图
type member struct {
	id     int64
	avail  []bool    // 按时段编号索引的空闲情况
	traits []float64 // 标准化后的体征向量
}

// crew: 求解器内部的艇组视图，既可以是固定艇组也可以是自动分组生成的
type crew struct {
	id      *int64 // 固定艇组的 ID，自动分组生成的艇组为 nil
	name    string
	members []*member
}

// availability 返回在某个时段有空的成员数量
func (c *crew) availability(option int32) int32 {
	var count int32
	for _, m := range c.members {
		if int(option) < len(m.avail) && m.avail[option] {
			count++
		}
	}
	return count
}
