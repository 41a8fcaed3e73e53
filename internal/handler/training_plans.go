package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/solver"
	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/utils"
)

func (h *Handler) CreateTrainingPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string    `json:"name" validate:"required"`
		Description         string    `json:"description"`
		SubmissionStartTime time.Time `json:"submissionStartTime" validate:"required"`
		SubmissionEndTime   time.Time `json:"submissionEndTime" validate:"required"`
		ActiveStartTime     time.Time `json:"activeStartTime" validate:"required"`
		ActiveEndTime       time.Time `json:"activeEndTime" validate:"required"`
		TemplateID          int64     `json:"templateID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := &domain.TrainingPlan{
		Name:                req.Name,
		Description:         req.Description,
		SubmissionStartTime: req.SubmissionStartTime,
		SubmissionEndTime:   req.SubmissionEndTime,
		ActiveStartTime:     req.ActiveStartTime,
		ActiveEndTime:       req.ActiveEndTime,
		TrainingTemplateID:  req.TemplateID,
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateTrainingPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 插入数据到数据库中
	if err := h.repository.CreateTrainingPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "training_plans_name_key":
				h.errorResponse(w, r, "训练计划名称已存在")
			case "training_plans_training_template_id_fkey":
				h.errorResponse(w, r, "训练计划模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建训练计划成功", plan)
}

func (h *Handler) GetTrainingPlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	h.successResponse(w, r, "获取训练计划成功", plan)
}

func (h *Handler) DeleteTrainingPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	if err := h.repository.DeleteTrainingPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除训练计划成功", nil)
}

func (h *Handler) UpdateTrainingPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	var req struct {
		Name                *string    `json:"name"`
		Description         *string    `json:"description"`
		SubmissionStartTime *time.Time `json:"submissionStartTime"`
		SubmissionEndTime   *time.Time `json:"submissionEndTime"`
		ActiveStartTime     *time.Time `json:"activeStartTime"`
		ActiveEndTime       *time.Time `json:"activeEndTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 将输入的参数解析到 plan 中
	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.SubmissionStartTime != nil {
		plan.SubmissionStartTime = *req.SubmissionStartTime
	}
	if req.SubmissionEndTime != nil {
		plan.SubmissionEndTime = *req.SubmissionEndTime
	}
	if req.ActiveStartTime != nil {
		plan.ActiveStartTime = *req.ActiveStartTime
	}
	if req.ActiveEndTime != nil {
		plan.ActiveEndTime = *req.ActiveEndTime
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateTrainingPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 更新训练计划
	if err := h.repository.UpdateTrainingPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "training_plans_name_key":
				h.errorResponse(w, r, "训练计划名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新训练计划成功", plan)
}

func (h *Handler) GetAllTrainingPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllTrainingPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有训练计划成功", plans)
}

func (h *Handler) SubmitYourAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Rower)
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	var req []struct {
		Day       int32   `json:"day" validate:"required,min=1"`
		Timeslots []int32 `json:"timeslots" validate:"required,dive,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.validate.Var(req, "required,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	submission := &domain.AvailabilitySubmission{
		TrainingPlanID: plan.ID,
		RowerID:        myInfo.ID,
		Items:          make([]domain.AvailabilitySubmissionItem, len(req)),
	}

	for i, item := range req {
		submission.Items[i] = domain.AvailabilitySubmissionItem{
			Day:       item.Day,
			Timeslots: item.Timeslots,
		}
	}

	// 还需要检查模板和提交的格式是否对的上
	template, err := h.repository.GetTrainingTemplate(plan.TrainingTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateSubmissionWithTemplate(submission, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertAvailabilitySubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功提交空闲时间", submission)
}

func (h *Handler) GetYourAvailabilitySubmission(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Rower)
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	submission, err := h.repository.GetAvailabilitySubmissionByRowerIDAndTrainingPlanID(myInfo.ID, plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "你还没有提交过空闲时间", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取空闲时间提交成功", submission)
}

func (h *Handler) GetTrainingPlanSubmissions(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	submissions, err := h.repository.GetAllSubmissionsByTrainingPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取该训练计划所有的提交记录成功", submissions)
}

func (h *Handler) SubmitSchedulingResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	var req []struct {
		CrewID    *int64  `json:"crewID"`
		Name      string  `json:"name" validate:"required"`
		MemberIDs []int64 `json:"memberIDs" validate:"required,min=1"`
		Sessions  []struct {
			Day      int32 `json:"day" validate:"required,min=1"`
			Timeslot int32 `json:"timeslot" validate:"required,min=1"`
		} `json:"sessions" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "required,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedulingResult := &domain.SchedulingResult{
		TrainingPlanID: plan.ID,
		Crews:          make([]domain.SchedulingResultCrew, len(req)),
	}

	for i, crew := range req {
		schedulingResult.Crews[i] = domain.SchedulingResultCrew{
			CrewID:    crew.CrewID,
			Name:      crew.Name,
			MemberIDs: crew.MemberIDs,
			Sessions:  make([]domain.SchedulingResultSession, len(crew.Sessions)),
		}

		for j, session := range crew.Sessions {
			schedulingResult.Crews[i].Sessions[j] = domain.SchedulingResultSession{
				Day:      session.Day,
				Timeslot: session.Timeslot,
			}
		}
	}

	// 必须检查提交的结果是否和模板对的上
	template, err := h.repository.GetTrainingTemplate(plan.TrainingTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateSchedulingResultWithTemplate(schedulingResult, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 还要检查是否存在被分到多个艇组的队员
	if err := utils.ValidIfExistsDuplicateRower(schedulingResult); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertSchedulingResult(schedulingResult); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交排期结果成功", schedulingResult)
}

func (h *Handler) GetSchedulingResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	schedulingResult, err := h.repository.GetSchedulingResultByTrainingPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该训练计划还没有排期结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排期结果成功", schedulingResult)
}

func (h *Handler) GenerateSchedulingResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TrainingPlanCtx).(*domain.TrainingPlan)

	// 获取参数，没有给出的参数使用配置中的默认值
	var req struct {
		PopulationSize           *int32     `json:"populationSize" validate:"omitempty,min=1"`
		MaxGenerations           *int32     `json:"maxGenerations" validate:"omitempty,min=0"`
		CrossoverRate            *float64   `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
		MutationRate             *float64   `json:"mutationRate" validate:"omitempty,min=0,max=1"`
		TournamentSize           *int32     `json:"tournamentSize" validate:"omitempty,min=1"`
		ConvergenceWindow        *int32     `json:"convergenceWindow" validate:"omitempty,min=0"`
		ConvergenceEpsilon       *float64   `json:"convergenceEpsilon" validate:"omitempty,min=0"`
		MinAvailabilityThreshold *float64   `json:"minAvailabilityThreshold" validate:"omitempty,min=0,max=1"`
		AssignmentWeight         *float64   `json:"assignmentWeight" validate:"omitempty,min=0"`
		SchedulingWeight         *float64   `json:"schedulingWeight" validate:"omitempty,min=0"`
		TraitWeights             *[]float64 `json:"traitWeights" validate:"omitempty,dive,min=0"`
		ClusteringEnabled        bool       `json:"clusteringEnabled"`
		RandomSeed               *int64     `json:"randomSeed"`
		Notify                   bool       `json:"notify"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 获取训练计划所用的模板
	template, err := h.repository.GetTrainingTemplate(plan.TrainingTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 构建参数
	parameters := h.defaultSolverParameters(template)
	if req.PopulationSize != nil {
		parameters.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		parameters.MaxGenerations = *req.MaxGenerations
	}
	if req.CrossoverRate != nil {
		parameters.CrossoverRate = *req.CrossoverRate
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.TournamentSize != nil {
		parameters.TournamentSize = *req.TournamentSize
	}
	if req.ConvergenceWindow != nil {
		parameters.ConvergenceWindow = *req.ConvergenceWindow
	}
	if req.ConvergenceEpsilon != nil {
		parameters.ConvergenceEpsilon = *req.ConvergenceEpsilon
	}
	if req.MinAvailabilityThreshold != nil {
		parameters.MinAvailabilityThreshold = *req.MinAvailabilityThreshold
	}
	if req.AssignmentWeight != nil {
		parameters.AssignmentWeight = *req.AssignmentWeight
	}
	if req.SchedulingWeight != nil {
		parameters.SchedulingWeight = *req.SchedulingWeight
	}
	if req.TraitWeights != nil {
		parameters.TraitWeights = *req.TraitWeights
	}
	parameters.ClusteringEnabled = req.ClusteringEnabled
	if req.RandomSeed != nil {
		parameters.RandomSeed = *req.RandomSeed
	} else {
		parameters.RandomSeed = time.Now().UnixNano()
	}

	// 获取训练计划的提交记录
	submissions, err := h.repository.GetAllSubmissionsByTrainingPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取参与排期的队员和固定艇组，已退队的队员不参加
	allRowers, err := h.repository.GetAllRowers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rowers := make([]*domain.Rower, 0, len(allRowers))
	for _, rower := range allRowers {
		if rower.IsActive {
			rowers = append(rowers, rower)
		}
	}

	crews, err := h.repository.GetAllCrews()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 艇组里可能还挂着已退队的队员，把成员列表过滤到在队名单内
	crews = utils.FilterCrewsToRoster(crews, rowers)

	// 自动排期
	s, err := solver.New(parameters, rowers, crews, submissions)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 全程没有空闲时间的队员不会导致失败，但值得记录下来
	if unavailable := s.UnavailableRowers(); len(unavailable) > 0 {
		slog.Warn("部分队员没有任何空闲时间", "planID", plan.ID, "rowerIDs", unavailable)
	}

	res, err := s.Solve()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	schedulingResult := &domain.SchedulingResult{
		TrainingPlanID: plan.ID,
		Crews:          res.Crews,
		Fitness:        &res.Fitness,
	}

	if err := h.repository.InsertSchedulingResult(schedulingResult); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 如果需要的话，给每位队员发送训练安排的通知邮件
	if req.Notify {
		if err := h.notifySchedulePublished(plan, schedulingResult, rowers); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "自动排期成功", schedulingResult)
}

// defaultSolverParameters 把模板中的排期维度和配置中的进化参数组装成求解器参数
func (h *Handler) defaultSolverParameters(template *domain.TrainingTemplate) *solver.Parameters {
	threshold := 0.0
	if template.CrewSize > 0 {
		threshold = float64(template.MinAvailable) / float64(template.CrewSize)
	}

	return &solver.Parameters{
		NumDays:                  template.NumDays,
		TimeslotsPerDay:          template.TimeslotsPerDay,
		BoatsPerSlot:             template.BoatsPerSlot,
		CoursesPerCrew:           template.CoursesPerCrew,
		CrewSize:                 template.CrewSize,
		PopulationSize:           int32(h.config.Solver.PopulationSize),
		CrossoverRate:            h.config.Solver.CrossoverRate,
		MutationRate:             h.config.Solver.MutationRate,
		TournamentSize:           int32(h.config.Solver.TournamentSize),
		MaxGenerations:           int32(h.config.Solver.MaxGenerations),
		ConvergenceWindow:        int32(h.config.Solver.ConvergenceWindow),
		ConvergenceEpsilon:       h.config.Solver.ConvergenceEpsilon,
		MinAvailabilityThreshold: threshold,
		PenaltyWeights: solver.PenaltyWeights{
			SameDay:         h.config.Solver.SameDayPenalty,
			LowAvailability: h.config.Solver.LowAvailPenalty,
		},
		TraitWeights:     h.config.Solver.TraitWeights,
		AssignmentWeight: h.config.Solver.AssignmentWeight,
		SchedulingWeight: h.config.Solver.SchedulingWeight,
	}
}

// notifySchedulePublished 把每个队员所属艇组的训练安排通过邮件队列发出去
func (h *Handler) notifySchedulePublished(plan *domain.TrainingPlan, result *domain.SchedulingResult, rowers []*domain.Rower) error {
	rowersMap := make(map[int64]*domain.Rower, len(rowers))
	for _, rower := range rowers {
		rowersMap[rower.ID] = rower
	}

	for _, crew := range result.Crews {
		sessions := make([]string, 0, len(crew.Sessions))
		for _, session := range crew.Sessions {
			sessions = append(sessions, fmt.Sprintf("第 %d 天 第 %d 时段", session.Day, session.Timeslot))
		}

		for _, memberID := range crew.MemberIDs {
			rower, exists := rowersMap[memberID]
			if !exists {
				continue
			}

			mailMessage := domain.MailMessage{
				Type: "schedule_published",
				To:   rower.Email,
				Data: domain.SchedulePublishedMailData{
					FullName: rower.FullName,
					PlanName: plan.Name,
					CrewName: crew.Name,
					Sessions: sessions,
				},
			}

			mailData, err := json.Marshal(mailMessage)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
			err = h.mailChannel.PublishWithContext(
				ctx,
				"",
				"email_queue",
				true,
				false,
				amqp.Publishing{
					ContentType: "application/json",
					Body:        mailData,
				},
			)
			cancel()
			if err != nil {
				return err
			}
		}
	}

	return nil
}
