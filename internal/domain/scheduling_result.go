package domain

import "time"

// SchedulingResultSession: 某个艇组被安排到的一次训练
type SchedulingResultSession struct {
	Day      int32 `json:"day"`
	Timeslot int32 `json:"timeslot"`
}

type SchedulingResultCrew struct {
	CrewID    *int64                    `json:"crewID"` // 当 CrewID 为 nil 时，表示这个艇组是由求解器自动分组生成的
	Name      string                    `json:"name"`
	MemberIDs []int64                   `json:"memberIDs"`
	Sessions  []SchedulingResultSession `json:"sessions"`
}

// FitnessBreakdown: 求解器给出的各项分数，仅用于诊断和展示
type FitnessBreakdown struct {
	Score                  float64 `json:"score"`
	SchedulingScore        float64 `json:"schedulingScore"`
	AssignmentScore        float64 `json:"assignmentScore"`
	SameDayPenalty         float64 `json:"sameDayPenalty"`
	LowAvailabilityPenalty float64 `json:"lowAvailabilityPenalty"`
}

type SchedulingResult struct {
	ID             int64                  `json:"id"`
	TrainingPlanID int64                  `json:"trainingPlanID"`
	Crews          []SchedulingResultCrew `json:"crews"`
	Fitness        *FitnessBreakdown      `json:"fitness"` // 手工提交的排期没有分数
	CreatedAt      time.Time              `json:"createdAt"`
	Version        int32                  `json:"-"`
}
