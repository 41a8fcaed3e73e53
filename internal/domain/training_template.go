package domain

import (
	"time"
)

// TrainingTemplate: 训练周期模板，定义了一个训练周期内有哪些可用的时段和资源
type TrainingTemplate struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	NumDays         int32     `json:"numDays"`         // 每个训练周期的天数
	TimeslotsPerDay int32     `json:"timeslotsPerDay"` // 每天的训练时段数
	BoatsPerSlot    int32     `json:"boatsPerSlot"`    // 每个时段可同时出航的船数
	CoursesPerCrew  int32     `json:"coursesPerCrew"`  // 每个艇组每周期需要安排的训练次数
	CrewSize        int32     `json:"crewSize"`        // 自动分组时每个艇组的人数
	MinAvailable    int32     `json:"minAvailable"`    // 每次训练最少需要到场的人数
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}

// NumOptions 返回模板中可选时段的总数（天数 x 每天时段数）
func (t *TrainingTemplate) NumOptions() int32 {
	return t.NumDays * t.TimeslotsPerDay
}
