package solver

import (
	"math"
	"testing"
)

// newTestSolver 构建一个只用于直接调用打分函数的求解器
func newTestSolver(params *Parameters, numTraits int) *Solver {
	return &Solver{params: params, numTraits: numTraits}
}

func testMember(id int64, avail []bool, traits ...float64) *member {
	return &member{id: id, avail: avail, traits: traits}
}

func TestSchedulingScoreFullAvailabilityIsOne(t *testing.T) {
	params := testParameters()
	params.NumDays = 2
	params.TimeslotsPerDay = 2
	params.CoursesPerCrew = 2
	s := newTestSolver(params, 0)

	crews := []*crew{{
		name: "一队",
		members: []*member{
			testMember(1, []bool{true, true, true, true}),
			testMember(2, []bool{true, true, true, true}),
		},
	}}

	// 所有人全程有空时，任何不触发惩罚的安排都应该得到正好 1.0
	score, sameDay, lowAvail := s.schedulingScore([][]int32{{0, 2}}, crews)
	if score != 1.0 {
		t.Fatalf("期望排期分数正好为 1.0，实际 %f", score)
	}
	if sameDay != 0 || lowAvail != 0 {
		t.Fatalf("不应该触发任何惩罚: sameDay=%f lowAvail=%f", sameDay, lowAvail)
	}
}

func TestSchedulingScoreZeroAvailabilityIsNotAnError(t *testing.T) {
	params := testParameters()
	params.NumDays = 1
	params.TimeslotsPerDay = 2
	params.CoursesPerCrew = 1
	params.MinAvailabilityThreshold = 0
	s := newTestSolver(params, 0)

	crews := []*crew{{
		name:    "一队",
		members: []*member{testMember(1, []bool{false, false})},
	}}

	score, _, _ := s.schedulingScore([][]int32{{0}}, crews)
	if score != 0 {
		t.Fatalf("全员没空时到场率应该为 0，实际分数 %f", score)
	}
}

func TestSchedulingScoreSameDayPenalty(t *testing.T) {
	params := testParameters()
	params.NumDays = 2
	params.TimeslotsPerDay = 2
	params.CoursesPerCrew = 2
	params.PenaltyWeights.SameDay = 0.25
	s := newTestSolver(params, 0)

	crews := []*crew{{
		name: "一队",
		members: []*member{
			testMember(1, []bool{true, true, true, true}),
		},
	}}

	// 时段 0 和 1 在同一天
	score, sameDay, _ := s.schedulingScore([][]int32{{0, 1}}, crews)
	if sameDay != 0.25 {
		t.Fatalf("期望同天惩罚 0.25，实际 %f", sameDay)
	}
	if math.Abs(score-0.75) > 1e-9 {
		t.Fatalf("期望扣分后 0.75，实际 %f", score)
	}
}

func TestSchedulingScoreLowAvailabilityPenalty(t *testing.T) {
	params := testParameters()
	params.NumDays = 2
	params.TimeslotsPerDay = 1
	params.CoursesPerCrew = 1
	params.MinAvailabilityThreshold = 0.75
	params.PenaltyWeights.LowAvailability = 0.1
	s := newTestSolver(params, 0)

	crews := []*crew{{
		name: "一队",
		members: []*member{
			testMember(1, []bool{true, true}),
			testMember(2, []bool{false, true}),
		},
	}}

	// 时段 0 的到场率 0.5 低于阈值 0.75
	score, _, lowAvail := s.schedulingScore([][]int32{{0}}, crews)
	if lowAvail != 0.1 {
		t.Fatalf("期望低到场率惩罚 0.1，实际 %f", lowAvail)
	}
	if math.Abs(score-0.4) > 1e-9 {
		t.Fatalf("期望分数 0.4，实际 %f", score)
	}

	// 时段 1 的到场率 1.0 不会触发惩罚
	score, _, lowAvail = s.schedulingScore([][]int32{{1}}, crews)
	if lowAvail != 0 || score != 1.0 {
		t.Fatalf("不应该触发惩罚: score=%f lowAvail=%f", score, lowAvail)
	}
}

func TestSchedulingScoreClampedAtZero(t *testing.T) {
	params := testParameters()
	params.NumDays = 1
	params.TimeslotsPerDay = 2
	params.CoursesPerCrew = 2
	params.MinAvailabilityThreshold = 1.0
	params.PenaltyWeights.LowAvailability = 5.0
	params.PenaltyWeights.SameDay = 5.0
	s := newTestSolver(params, 0)

	crews := []*crew{{
		name:    "一队",
		members: []*member{testMember(1, []bool{false, false})},
	}}

	score, _, _ := s.schedulingScore([][]int32{{0, 1}}, crews)
	if score != 0 {
		t.Fatalf("扣分后的分数不能低于 0，实际 %f", score)
	}
}

func TestAssignmentScoreIdenticalTraitsIsOne(t *testing.T) {
	s := newTestSolver(testParameters(), 2)

	// 标准化后完全相同的体征向量偏差为 0
	clusters := [][]*member{
		{testMember(1, nil, 0, 0), testMember(2, nil, 0, 0)},
		{testMember(3, nil, 0, 0), testMember(4, nil, 0, 0)},
	}

	if score := s.assignmentScore(clusters); score != 1.0 {
		t.Fatalf("体征完全相同时分组分数应该正好为 1.0，实际 %f", score)
	}
}

func TestAssignmentScoreNoTraitsIsOne(t *testing.T) {
	s := newTestSolver(testParameters(), 0)

	clusters := [][]*member{
		{testMember(1, nil), testMember(2, nil)},
	}

	if score := s.assignmentScore(clusters); score != 1.0 {
		t.Fatalf("没有体征数据时分组分数应该正好为 1.0，实际 %f", score)
	}
}

func TestAssignmentScoreHomogeneousBeatsMixed(t *testing.T) {
	s := newTestSolver(testParameters(), 1)

	homogeneous := [][]*member{
		{testMember(1, nil, -1), testMember(2, nil, -1)},
		{testMember(3, nil, 1), testMember(4, nil, 1)},
	}
	mixed := [][]*member{
		{testMember(1, nil, -1), testMember(2, nil, 1)},
		{testMember(3, nil, -1), testMember(4, nil, 1)},
	}

	if s.assignmentScore(homogeneous) <= s.assignmentScore(mixed) {
		t.Fatal("组内体征均匀的分组应该得到更高的分数")
	}
}

func TestCombinedScoreWeights(t *testing.T) {
	params := testParameters()
	params.AssignmentWeight = 1
	params.SchedulingWeight = 3
	s := newTestSolver(params, 0)

	combined := s.combinedScore(1.0, 0.5)
	if math.Abs(combined-0.625) > 1e-9 {
		t.Fatalf("期望 (1*1.0+3*0.5)/4 = 0.625，实际 %f", combined)
	}
}

func TestAssignmentScoreTraitWeights(t *testing.T) {
	params := testParameters()
	s := newTestSolver(params, 2)

	// 成员只在第二个维度上有差异
	clusters := [][]*member{
		{testMember(1, nil, 0, -1), testMember(2, nil, 0, 1)},
	}

	uniform := s.assignmentScore(clusters)

	// 权重全部压在没有差异的维度上时，艇组应该被视为完全均匀
	params.TraitWeights = []float64{1, 0}
	if score := s.assignmentScore(clusters); score != 1.0 {
		t.Fatalf("忽略有差异的维度后分组分数应该正好为 1.0，实际 %f", score)
	}

	// 权重全部压在有差异的维度上时，分数应该比等权时更低
	params.TraitWeights = []float64{0, 1}
	if score := s.assignmentScore(clusters); score >= uniform {
		t.Fatalf("只按有差异的维度打分时分数应该更低: weighted=%f uniform=%f", score, uniform)
	}
}
