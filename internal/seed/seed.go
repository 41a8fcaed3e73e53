package seed

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/repository"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/utils"
)

const (
	demoRowerNumber      = 24
	demoCrewNumber       = 2
	demoCrewSize         = 4
	demoSubmitLikelihood = 0.7
)

// SeedDemoData 生成一份完整的演示数据：一个训练模板、一个正在开放提交的训练计划、
// 若干队员（其中一部分已经预先分入艇组）以及每个队员的空闲提交
func SeedDemoData(r *repository.Repository, password string, emailDomainName string) {
	// 插入训练模板
	template := &domain.TrainingTemplate{
		Name:            "2026春季训练模板",
		Description:     "每周 7 天、每天早晚两个时段，每个时段 3 条艇",
		NumDays:         7,
		TimeslotsPerDay: 2,
		BoatsPerSlot:    3,
		CoursesPerCrew:  2,
		CrewSize:        demoCrewSize,
		MinAvailable:    2,
	}

	if err := r.CreateTrainingTemplate(template); err != nil {
		slog.Error("插入训练模板失败", "error", err)
		return
	}

	// 插入训练计划
	plan := &domain.TrainingPlan{
		Name:        "2026春季学期训练计划",
		Description: "覆盖 2026 年春季学期的常规水上训练",
		// 这些时间不是准确的时间，只是为了测试
		SubmissionStartTime: time.Now().Add(-time.Hour * 24),
		SubmissionEndTime:   time.Now().Add(time.Hour * 6),
		ActiveStartTime:     time.Now().Add(time.Hour * 24 * 10),
		ActiveEndTime:       time.Now().Add(time.Hour * 24 * 20),
		TrainingTemplateID:  template.ID,
	}

	if err := r.CreateTrainingPlan(plan); err != nil {
		slog.Error("插入训练计划失败", "error", err)
		return
	}

	// 插入队员
	rowers := make([]*domain.Rower, 0, demoRowerNumber)
	for i := 0; i < demoRowerNumber; i++ {
		rower, err := utils.GenerateRandomRower(password, emailDomainName)
		if err != nil {
			slog.Error("生成随机队员失败", "error", err)
			return
		}
		rower.Role = domain.RoleNormalRower

		if err := r.CreateRower(rower); err != nil {
			slog.Error("插入队员失败", "error", err)
			continue
		}
		rowers = append(rowers, rower)
	}

	// 把前面若干名队员预先分入艇组，剩下的留给自动分组
	for i := 0; i < demoCrewNumber; i++ {
		crew := &domain.Crew{
			Name:      fmt.Sprintf("演示艇组 %d", i+1),
			MemberIDs: make([]int64, 0, demoCrewSize),
		}
		for j := 0; j < demoCrewSize; j++ {
			index := i*demoCrewSize + j
			if index >= len(rowers) {
				break
			}
			crew.MemberIDs = append(crew.MemberIDs, rowers[index].ID)
		}

		if err := r.CreateCrew(crew); err != nil {
			slog.Error("插入艇组失败", "error", err)
			continue
		}
	}

	// 为每个队员插入空闲提交
	for _, rower := range rowers {
		submission := utils.GenerateRandomSubmission(template, rower, demoSubmitLikelihood)
		submission.TrainingPlanID = plan.ID

		if err := r.InsertAvailabilitySubmission(submission); err != nil {
			slog.Error("插入空闲提交失败", "error", err)
			continue
		}
	}

	slog.Info("插入演示数据完成")
}
