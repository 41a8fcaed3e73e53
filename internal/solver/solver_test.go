package solver

import (
	"reflect"
	"strings"
	"testing"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func testParameters() *Parameters {
	return &Parameters{
		NumDays:                  2,
		TimeslotsPerDay:          3,
		BoatsPerSlot:             2,
		CoursesPerCrew:           1,
		CrewSize:                 2,
		PopulationSize:           30,
		CrossoverRate:            0.5,
		MutationRate:             0.05,
		TournamentSize:           3,
		MaxGenerations:           50,
		ConvergenceWindow:        10,
		ConvergenceEpsilon:       1e-6,
		MinAvailabilityThreshold: 0,
		PenaltyWeights:           PenaltyWeights{SameDay: 0.1, LowAvailability: 0.1},
		AssignmentWeight:         1,
		SchedulingWeight:         1,
		ClusteringEnabled:        false,
		RandomSeed:               42,
	}
}

func testRower(id int64, traits ...float64) *domain.Rower {
	return &domain.Rower{ID: id, Traits: traits}
}

// fullSubmission 构造一个全程有空的提交
func fullSubmission(rowerID int64, numDays int32, timeslotsPerDay int32) *domain.AvailabilitySubmission {
	submission := &domain.AvailabilitySubmission{RowerID: rowerID}
	for day := int32(1); day <= numDays; day++ {
		item := domain.AvailabilitySubmissionItem{Day: day}
		for timeslot := int32(1); timeslot <= timeslotsPerDay; timeslot++ {
			item.Timeslots = append(item.Timeslots, timeslot)
		}
		submission.Items = append(submission.Items, item)
	}
	return submission
}

func TestNewValidatesParameters(t *testing.T) {
	rowers := []*domain.Rower{testRower(1), testRower(2)}

	tests := []struct {
		name   string
		modify func(p *Parameters)
	}{
		{"零天数", func(p *Parameters) { p.NumDays = 0 }},
		{"零时段数", func(p *Parameters) { p.TimeslotsPerDay = 0 }},
		{"零船数", func(p *Parameters) { p.BoatsPerSlot = 0 }},
		{"零训练次数", func(p *Parameters) { p.CoursesPerCrew = 0 }},
		{"零种群", func(p *Parameters) { p.PopulationSize = 0 }},
		{"锦标赛过大", func(p *Parameters) { p.TournamentSize = p.PopulationSize + 1 }},
		{"交叉概率为负", func(p *Parameters) { p.CrossoverRate = -0.1 }},
		{"交叉概率过大", func(p *Parameters) { p.CrossoverRate = 1.1 }},
		{"变异概率为负", func(p *Parameters) { p.MutationRate = -0.1 }},
		{"最大代数为负", func(p *Parameters) { p.MaxGenerations = -1 }},
		{"收敛窗口为负", func(p *Parameters) { p.ConvergenceWindow = -1 }},
		{"阈值过大", func(p *Parameters) { p.MinAvailabilityThreshold = 1.5 }},
		{"惩罚系数为负", func(p *Parameters) { p.PenaltyWeights.SameDay = -1 }},
		{"权重为负", func(p *Parameters) { p.AssignmentWeight = -1 }},
		{"权重全为零", func(p *Parameters) { p.AssignmentWeight = 0; p.SchedulingWeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParameters()
			tt.modify(params)
			if _, err := New(params, rowers, nil, nil); err == nil {
				t.Fatal("期望参数校验失败")
			}
		})
	}
}

func TestNewRejectsUnevenClusterSize(t *testing.T) {
	params := testParameters()
	params.ClusteringEnabled = true
	params.CrewSize = 2

	rowers := []*domain.Rower{testRower(1), testRower(2), testRower(3)}

	_, err := New(params, rowers, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "整除") {
		t.Fatalf("期望整除校验失败，实际 %v", err)
	}
}

func TestNewRejectsOverCapacity(t *testing.T) {
	params := testParameters()
	params.NumDays = 1
	params.TimeslotsPerDay = 1
	params.BoatsPerSlot = 1

	// 两个单人艇组要安排 2 次训练，但是只有 1 个船位
	rowers := []*domain.Rower{testRower(1), testRower(2)}

	_, err := New(params, rowers, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "船位") {
		t.Fatalf("期望容量校验失败，实际 %v", err)
	}
}

func TestNewRejectsEmptyRoster(t *testing.T) {
	if _, err := New(testParameters(), nil, nil, nil); err == nil {
		t.Fatal("没有任何艇组时应该返回错误")
	}
}

func TestNewRejectsUnknownCrewMember(t *testing.T) {
	rowers := []*domain.Rower{testRower(1)}
	crews := []*domain.Crew{{ID: 1, Name: "一队", MemberIDs: []int64{1, 99}}}

	if _, err := New(testParameters(), rowers, crews, nil); err == nil {
		t.Fatal("艇组成员不在名单中时应该返回错误")
	}
}

func TestNewRejectsDuplicateCrewMember(t *testing.T) {
	rowers := []*domain.Rower{testRower(1), testRower(2)}
	crews := []*domain.Crew{
		{ID: 1, Name: "一队", MemberIDs: []int64{1}},
		{ID: 2, Name: "二队", MemberIDs: []int64{1, 2}},
	}

	if _, err := New(testParameters(), rowers, crews, nil); err == nil {
		t.Fatal("一个队员同时属于多个艇组时应该返回错误")
	}
}

func TestNewRejectsInconsistentTraits(t *testing.T) {
	rowers := []*domain.Rower{testRower(1, 1.8), testRower(2, 1.8, 75)}

	if _, err := New(testParameters(), rowers, nil, nil); err == nil {
		t.Fatal("体征维数不一致时应该返回错误")
	}
}

func TestSolveSingleSlotFullAvailability(t *testing.T) {
	params := testParameters()
	params.NumDays = 1
	params.TimeslotsPerDay = 1
	params.BoatsPerSlot = 1
	params.MaxGenerations = 1

	// 一个双人艇组，唯一的时段所有人都有空，一代之内就应该得到满分
	rowers := []*domain.Rower{testRower(1), testRower(2)}
	crews := []*domain.Crew{{ID: 1, Name: "一队", MemberIDs: []int64{1, 2}}}
	submissions := []*domain.AvailabilitySubmission{
		fullSubmission(1, 1, 1),
		fullSubmission(2, 1, 1),
	}

	s, err := New(params, rowers, crews, submissions)
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	result, err := s.Solve()
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	if result.Fitness.SchedulingScore != 1.0 {
		t.Fatalf("期望排期分数正好为 1.0，实际 %f", result.Fitness.SchedulingScore)
	}
	if result.Fitness.Score != 1.0 {
		t.Fatalf("期望总分正好为 1.0，实际 %f", result.Fitness.Score)
	}
	if len(result.Crews) != 1 || len(result.Crews[0].Sessions) != 1 {
		t.Fatalf("期望一个艇组一次训练，实际 %+v", result.Crews)
	}
	if result.Crews[0].Sessions[0].Day != 1 || result.Crews[0].Sessions[0].Timeslot != 1 {
		t.Fatalf("唯一的训练应该安排在 (1, 1)，实际 %+v", result.Crews[0].Sessions[0])
	}
}

func TestSolveClusteringIdenticalTraits(t *testing.T) {
	params := testParameters()
	params.ClusteringEnabled = true
	params.CrewSize = 4
	params.NumDays = 2
	params.TimeslotsPerDay = 2
	params.BoatsPerSlot = 1
	params.MaxGenerations = 20

	// 12 个体征完全相同的队员分成 3 组，分组分数应该收敛到正好 1.0
	var rowers []*domain.Rower
	var submissions []*domain.AvailabilitySubmission
	for id := int64(1); id <= 12; id++ {
		rowers = append(rowers, testRower(id, 1.80, 75))
		submissions = append(submissions, fullSubmission(id, params.NumDays, params.TimeslotsPerDay))
	}

	s, err := New(params, rowers, nil, submissions)
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	result, err := s.Solve()
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	if result.Fitness.AssignmentScore != 1.0 {
		t.Fatalf("体征完全相同时分组分数应该正好为 1.0，实际 %f", result.Fitness.AssignmentScore)
	}
	if result.ClusteringState == "" {
		t.Fatal("应该记录分组阶段的结束状态")
	}
	if len(result.Crews) != 3 {
		t.Fatalf("期望 3 个自动分组的艇组，实际 %d", len(result.Crews))
	}

	seen := make(map[int64]bool)
	for _, crew := range result.Crews {
		if crew.CrewID != nil {
			t.Fatalf("自动分组生成的艇组不应该有固定 ID: %+v", crew)
		}
		if len(crew.MemberIDs) != 4 {
			t.Fatalf("每个艇组应该正好有 4 人，实际 %d", len(crew.MemberIDs))
		}
		for _, id := range crew.MemberIDs {
			if seen[id] {
				t.Fatalf("队员 %d 被分到了多个艇组", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 12 {
		t.Fatalf("期望 12 个队员全部被分组，实际 %d", len(seen))
	}
}

func TestSolveDeterministicWithSameSeed(t *testing.T) {
	run := func() *Result {
		params := testParameters()
		params.ClusteringEnabled = true
		params.CrewSize = 2
		params.NumDays = 3
		params.TimeslotsPerDay = 2
		params.MaxGenerations = 15

		rowers := []*domain.Rower{
			testRower(1, 1.75), testRower(2, 1.92), testRower(3, 1.80),
			testRower(4, 1.85), testRower(5, 1.70), testRower(6, 1.88),
		}
		submissions := []*domain.AvailabilitySubmission{
			fullSubmission(1, 3, 2), fullSubmission(3, 3, 2), fullSubmission(5, 3, 2),
			{RowerID: 2, Items: []domain.AvailabilitySubmissionItem{{Day: 1, Timeslots: []int32{1}}}},
			{RowerID: 4, Items: []domain.AvailabilitySubmissionItem{{Day: 2, Timeslots: []int32{1, 2}}}},
		}

		s, err := New(params, rowers, nil, submissions)
		if err != nil {
			t.Fatalf("创建求解器失败: %v", err)
		}
		result, err := s.Solve()
		if err != nil {
			t.Fatalf("求解失败: %v", err)
		}
		return result
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("相同的输入和种子应该产生完全相同的结果\n%+v\n%+v", first, second)
	}
}

func TestSolveZeroGenerations(t *testing.T) {
	params := testParameters()
	params.MaxGenerations = 0

	rowers := []*domain.Rower{testRower(1), testRower(2)}

	s, err := New(params, rowers, nil, []*domain.AvailabilitySubmission{
		fullSubmission(1, params.NumDays, params.TimeslotsPerDay),
	})
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	result, err := s.Solve()
	if err != nil {
		t.Fatalf("最大代数为 0 时也应该返回第 0 代的最优解: %v", err)
	}
	if len(result.Crews) != 2 {
		t.Fatalf("期望 2 个单人艇组，实际 %d", len(result.Crews))
	}
	if result.SchedulingState != "exhausted" {
		t.Fatalf("期望 exhausted 状态，实际 %s", result.SchedulingState)
	}
	if result.SchedulingGenerations != 0 {
		t.Fatalf("期望 0 代，实际 %d", result.SchedulingGenerations)
	}
}

func TestSolveSingletonFallback(t *testing.T) {
	params := testParameters()

	rowers := []*domain.Rower{testRower(1), testRower(2), testRower(3)}

	s, err := New(params, rowers, nil, nil)
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	result, err := s.Solve()
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	// 不开启自动分组也没有固定艇组时，每个队员单独成组
	if len(result.Crews) != 3 {
		t.Fatalf("期望 3 个单人艇组，实际 %d", len(result.Crews))
	}
	for _, crew := range result.Crews {
		if len(crew.MemberIDs) != 1 {
			t.Fatalf("期望单人艇组，实际 %+v", crew)
		}
	}
}

func TestUnavailableRowers(t *testing.T) {
	params := testParameters()

	rowers := []*domain.Rower{testRower(1), testRower(2)}
	submissions := []*domain.AvailabilitySubmission{
		fullSubmission(1, params.NumDays, params.TimeslotsPerDay),
	}

	s, err := New(params, rowers, nil, submissions)
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	unavailable := s.UnavailableRowers()
	if len(unavailable) != 1 || unavailable[0] != 2 {
		t.Fatalf("期望队员 2 被标记为全程没空，实际 %v", unavailable)
	}
}

func TestNewRejectsBadTraitWeights(t *testing.T) {
	rowers := []*domain.Rower{testRower(1, 180, 75), testRower(2, 170, 70)}

	tests := []struct {
		name    string
		weights []float64
	}{
		{"维数不一致", []float64{1}},
		{"负权重", []float64{1, -1}},
		{"全零权重", []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParameters()
			params.TraitWeights = tt.weights
			if _, err := New(params, rowers, nil, nil); err == nil {
				t.Fatal("期望非法的体征权重被拒绝")
			}
		})
	}
}

func TestSolveScoreWithoutClustering(t *testing.T) {
	params := testParameters()
	params.NumDays = 1
	params.TimeslotsPerDay = 2
	params.BoatsPerSlot = 1

	// 两人艇组中只有一人有空，排期分数最高只能到 0.5
	rowers := []*domain.Rower{testRower(1), testRower(2)}
	crews := []*domain.Crew{{ID: 1, Name: "一队", MemberIDs: []int64{1, 2}}}
	submissions := []*domain.AvailabilitySubmission{fullSubmission(1, 1, 2)}

	s, err := New(params, rowers, crews, submissions)
	if err != nil {
		t.Fatalf("创建求解器失败: %v", err)
	}

	result, err := s.Solve()
	if err != nil {
		t.Fatalf("求解失败: %v", err)
	}

	// 没有执行分组阶段时总分就是排期分数，不能被固定的分组分数拉高
	if result.Fitness.Score != result.Fitness.SchedulingScore {
		t.Fatalf("期望总分等于排期分数 %f，实际 %f", result.Fitness.SchedulingScore, result.Fitness.Score)
	}
	if result.Fitness.Score != 0.5 {
		t.Fatalf("期望总分正好为 0.5，实际 %f", result.Fitness.Score)
	}
}
