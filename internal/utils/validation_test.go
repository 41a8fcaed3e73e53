package utils

import (
	"testing"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func testTemplate() *domain.TrainingTemplate {
	return &domain.TrainingTemplate{
		NumDays:         7,
		TimeslotsPerDay: 3,
		BoatsPerSlot:    2,
		CoursesPerCrew:  2,
		CrewSize:        4,
		MinAvailable:    2,
	}
}

func TestValidateTrainingPlanTime(t *testing.T) {
	now := time.Now()

	valid := &domain.TrainingPlan{
		SubmissionStartTime: now,
		SubmissionEndTime:   now.Add(time.Hour * 24),
		ActiveStartTime:     now.Add(time.Hour * 48),
		ActiveEndTime:       now.Add(time.Hour * 72),
	}
	if err := ValidateTrainingPlanTime(valid); err != nil {
		t.Fatalf("合法的时间窗口不应该报错: %v", err)
	}

	invalid := &domain.TrainingPlan{
		SubmissionStartTime: now.Add(time.Hour * 24),
		SubmissionEndTime:   now,
		ActiveStartTime:     now.Add(time.Hour * 48),
		ActiveEndTime:       now.Add(time.Hour * 72),
	}
	if err := ValidateTrainingPlanTime(invalid); err == nil {
		t.Fatal("提交开始时间晚于结束时间应该报错")
	}

	overlapping := &domain.TrainingPlan{
		SubmissionStartTime: now,
		SubmissionEndTime:   now.Add(time.Hour * 48),
		ActiveStartTime:     now.Add(time.Hour * 24),
		ActiveEndTime:       now.Add(time.Hour * 72),
	}
	if err := ValidateTrainingPlanTime(overlapping); err == nil {
		t.Fatal("生效开始时间早于提交结束时间应该报错")
	}
}

func TestValidateSubmissionWithTemplate(t *testing.T) {
	template := testTemplate()

	valid := &domain.AvailabilitySubmission{
		Items: []domain.AvailabilitySubmissionItem{
			{Day: 1, Timeslots: []int32{1, 2}},
			{Day: 3, Timeslots: []int32{3}},
		},
	}
	if err := ValidateSubmissionWithTemplate(valid, template); err != nil {
		t.Fatalf("合法的提交不应该报错: %v", err)
	}

	outOfRangeDay := &domain.AvailabilitySubmission{
		Items: []domain.AvailabilitySubmissionItem{{Day: 8, Timeslots: []int32{1}}},
	}
	if err := ValidateSubmissionWithTemplate(outOfRangeDay, template); err == nil {
		t.Fatal("超出范围的天数应该报错")
	}

	outOfRangeTimeslot := &domain.AvailabilitySubmission{
		Items: []domain.AvailabilitySubmissionItem{{Day: 1, Timeslots: []int32{4}}},
	}
	if err := ValidateSubmissionWithTemplate(outOfRangeTimeslot, template); err == nil {
		t.Fatal("超出范围的时段应该报错")
	}

	duplicateDay := &domain.AvailabilitySubmission{
		Items: []domain.AvailabilitySubmissionItem{
			{Day: 1, Timeslots: []int32{1}},
			{Day: 1, Timeslots: []int32{2}},
		},
	}
	if err := ValidateSubmissionWithTemplate(duplicateDay, template); err == nil {
		t.Fatal("重复提交同一天应该报错")
	}
}

func TestValidateSchedulingResultWithTemplate(t *testing.T) {
	template := testTemplate()

	valid := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{
				Name:      "一队",
				MemberIDs: []int64{1, 2},
				Sessions: []domain.SchedulingResultSession{
					{Day: 1, Timeslot: 1},
					{Day: 3, Timeslot: 2},
				},
			},
		},
	}
	if err := ValidateSchedulingResultWithTemplate(valid, template); err != nil {
		t.Fatalf("合法的排期结果不应该报错: %v", err)
	}

	wrongCount := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{
				Name:      "一队",
				MemberIDs: []int64{1},
				Sessions:  []domain.SchedulingResultSession{{Day: 1, Timeslot: 1}},
			},
		},
	}
	if err := ValidateSchedulingResultWithTemplate(wrongCount, template); err == nil {
		t.Fatal("训练次数不符合模板要求应该报错")
	}

	overCapacity := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{Name: "一队", MemberIDs: []int64{1}, Sessions: []domain.SchedulingResultSession{{Day: 1, Timeslot: 1}, {Day: 2, Timeslot: 1}}},
			{Name: "二队", MemberIDs: []int64{2}, Sessions: []domain.SchedulingResultSession{{Day: 1, Timeslot: 1}, {Day: 2, Timeslot: 1}}},
			{Name: "三队", MemberIDs: []int64{3}, Sessions: []domain.SchedulingResultSession{{Day: 1, Timeslot: 1}, {Day: 2, Timeslot: 1}}},
		},
	}
	if err := ValidateSchedulingResultWithTemplate(overCapacity, template); err == nil {
		t.Fatal("同一时段的艇组数超过船数应该报错")
	}

	repeatedSession := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{
				Name:      "一队",
				MemberIDs: []int64{1},
				Sessions: []domain.SchedulingResultSession{
					{Day: 1, Timeslot: 1},
					{Day: 1, Timeslot: 1},
				},
			},
		},
	}
	if err := ValidateSchedulingResultWithTemplate(repeatedSession, template); err == nil {
		t.Fatal("同一个艇组在同一时段被安排两次应该报错")
	}
}

func TestValidIfExistsDuplicateRower(t *testing.T) {
	valid := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{Name: "一队", MemberIDs: []int64{1, 2}},
			{Name: "二队", MemberIDs: []int64{3, 4}},
		},
	}
	if err := ValidIfExistsDuplicateRower(valid); err != nil {
		t.Fatalf("没有重复队员时不应该报错: %v", err)
	}

	crossCrew := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{Name: "一队", MemberIDs: []int64{1, 2}},
			{Name: "二队", MemberIDs: []int64{2, 3}},
		},
	}
	if err := ValidIfExistsDuplicateRower(crossCrew); err == nil {
		t.Fatal("同一个队员出现在多个艇组应该报错")
	}

	sameCrew := &domain.SchedulingResult{
		Crews: []domain.SchedulingResultCrew{
			{Name: "一队", MemberIDs: []int64{1, 1}},
		},
	}
	if err := ValidIfExistsDuplicateRower(sameCrew); err == nil {
		t.Fatal("同一个艇组内重复的队员应该报错")
	}
}

func TestValidateTraitsDimension(t *testing.T) {
	current := []float64{180, 75, 400}

	if err := ValidateTraitsDimension([]float64{175, 70, 420}, current); err != nil {
		t.Fatalf("维数一致时不应该报错: %v", err)
	}
	if err := ValidateTraitsDimension([]float64{175, 70}, current); err == nil {
		t.Fatal("维数变化应该报错")
	}
	// 原来没有体征数据的队员可以写入任意维数
	if err := ValidateTraitsDimension([]float64{175, 70}, nil); err != nil {
		t.Fatalf("没有已有记录时不应该报错: %v", err)
	}
}

func TestFilterCrewsToRoster(t *testing.T) {
	rowers := []*domain.Rower{{ID: 1}, {ID: 2}, {ID: 3}}
	crews := []*domain.Crew{
		{ID: 10, Name: "一队", MemberIDs: []int64{1, 2}},
		{ID: 11, Name: "二队", MemberIDs: []int64{3, 4}}, // 队员 4 已经退队
		{ID: 12, Name: "三队", MemberIDs: []int64{5, 6}}, // 全员退队
	}

	filtered := FilterCrewsToRoster(crews, rowers)

	if len(filtered) != 2 {
		t.Fatalf("期望保留 2 个艇组，实际 %d", len(filtered))
	}
	if len(filtered[0].MemberIDs) != 2 {
		t.Fatalf("一队的成员不应该被过滤: %v", filtered[0].MemberIDs)
	}
	if len(filtered[1].MemberIDs) != 1 || filtered[1].MemberIDs[0] != 3 {
		t.Fatalf("二队应该只剩下队员 3: %v", filtered[1].MemberIDs)
	}

	// 原始艇组不能被修改
	if len(crews[1].MemberIDs) != 2 {
		t.Fatalf("过滤不应该修改原始艇组: %v", crews[1].MemberIDs)
	}
}
