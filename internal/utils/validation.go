package utils

import (
	"fmt"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func ValidateTrainingPlanTime(plan *domain.TrainingPlan) error {
	if plan.SubmissionStartTime.After(plan.SubmissionEndTime) {
		return fmt.Errorf("提交开始时间不能晚于提交结束时间")
	}

	if plan.ActiveStartTime.After(plan.ActiveEndTime) {
		return fmt.Errorf("生效开始时间不能晚于生效结束时间")
	}

	if plan.ActiveStartTime.Before(plan.SubmissionEndTime) {
		return fmt.Errorf("生效开始时间不能早于提交结束时间")
	}

	return nil
}

func ValidateSubmissionWithTemplate(submission *domain.AvailabilitySubmission, template *domain.TrainingTemplate) error {
	seenDays := make(map[int32]bool)

	for i, item := range submission.Items {
		if item.Day < 1 || item.Day > template.NumDays {
			return fmt.Errorf("第 %d 项的天数超出了模板的范围", i+1)
		}
		if seenDays[item.Day] {
			return fmt.Errorf("第 %d 天被重复提交", item.Day)
		}
		seenDays[item.Day] = true

		seenTimeslots := make(map[int32]bool)
		for _, timeslot := range item.Timeslots {
			if timeslot < 1 || timeslot > template.TimeslotsPerDay {
				return fmt.Errorf("第 %d 天的时段 %d 超出了模板的范围", item.Day, timeslot)
			}
			if seenTimeslots[timeslot] {
				return fmt.Errorf("第 %d 天的时段 %d 被重复提交", item.Day, timeslot)
			}
			seenTimeslots[timeslot] = true
		}
	}

	return nil
}

func ValidateSchedulingResultWithTemplate(result *domain.SchedulingResult, template *domain.TrainingTemplate) error {
	// 统计每个时段被占用的船位数
	boatsUsed := make(map[[2]int32]int32)

	for i, crew := range result.Crews {
		if int32(len(crew.Sessions)) != template.CoursesPerCrew {
			return fmt.Errorf("艇组 %s 的训练次数和模板要求的 %d 次不匹配", crew.Name, template.CoursesPerCrew)
		}

		seen := make(map[[2]int32]bool)
		for _, session := range crew.Sessions {
			if session.Day < 1 || session.Day > template.NumDays {
				return fmt.Errorf("第 %d 个艇组的训练天数 %d 超出了模板的范围", i+1, session.Day)
			}
			if session.Timeslot < 1 || session.Timeslot > template.TimeslotsPerDay {
				return fmt.Errorf("第 %d 个艇组的训练时段 %d 超出了模板的范围", i+1, session.Timeslot)
			}

			option := [2]int32{session.Day, session.Timeslot}
			if seen[option] {
				return fmt.Errorf("艇组 %s 在同一个时段 (%d, %d) 被安排了多次训练", crew.Name, session.Day, session.Timeslot)
			}
			seen[option] = true

			boatsUsed[option]++
			if boatsUsed[option] > template.BoatsPerSlot {
				return fmt.Errorf("时段 (%d, %d) 安排的艇组数超过了可用的船数 %d", session.Day, session.Timeslot, template.BoatsPerSlot)
			}
		}
	}

	return nil
}

func ValidIfExistsDuplicateRower(result *domain.SchedulingResult) error {
	seen := make(map[int64]string)

	for _, crew := range result.Crews {
		for _, memberID := range crew.MemberIDs {
			if other, exists := seen[memberID]; exists {
				if other == crew.Name {
					return fmt.Errorf("艇组 %s 中存在重复的队员 %d", crew.Name, memberID)
				}
				return fmt.Errorf("队员 %d 同时出现在艇组 %s 和 %s 中", memberID, other, crew.Name)
			}
			seen[memberID] = crew.Name
		}
	}

	return nil
}

// ValidateTraitsDimension 校验新的体征向量和已有记录的维数一致，
// 避免修改之后全队的体征维数不再统一
func ValidateTraitsDimension(newTraits []float64, currentTraits []float64) error {
	if len(currentTraits) > 0 && len(newTraits) != len(currentTraits) {
		return fmt.Errorf("体征向量的维数应该为 %d", len(currentTraits))
	}
	return nil
}

// FilterCrewsToRoster 把每个艇组的成员列表过滤到给定名单内，
// 过滤后没有成员的艇组会被一并去掉
func FilterCrewsToRoster(crews []*domain.Crew, rowers []*domain.Rower) []*domain.Crew {
	roster := make(map[int64]bool, len(rowers))
	for _, rower := range rowers {
		roster[rower.ID] = true
	}

	filtered := make([]*domain.Crew, 0, len(crews))
	for _, crew := range crews {
		memberIDs := make([]int64, 0, len(crew.MemberIDs))
		for _, memberID := range crew.MemberIDs {
			if roster[memberID] {
				memberIDs = append(memberIDs, memberID)
			}
		}
		if len(memberIDs) == 0 {
			continue
		}

		kept := *crew
		kept.MemberIDs = memberIDs
		filtered = append(filtered, &kept)
	}
	return filtered
}
