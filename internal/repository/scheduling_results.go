package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (r *Repository) InsertSchedulingResult(result *domain.SchedulingResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先将之前的排期结果删除
	query := `DELETE FROM scheduling_results WHERE training_plan_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.TrainingPlanID); err != nil {
		return err
	}

	// 手工提交的排期没有分数，对应的列保持 NULL
	var score, schedulingScore, assignmentScore, sameDayPenalty, lowAvailPenalty *float64
	if result.Fitness != nil {
		score = &result.Fitness.Score
		schedulingScore = &result.Fitness.SchedulingScore
		assignmentScore = &result.Fitness.AssignmentScore
		sameDayPenalty = &result.Fitness.SameDayPenalty
		lowAvailPenalty = &result.Fitness.LowAvailabilityPenalty
	}

	query = `
		INSERT INTO scheduling_results (
			training_plan_id,
			score,
			scheduling_score,
			assignment_score,
			same_day_penalty,
			low_availability_penalty
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	params := []any{result.TrainingPlanID, score, schedulingScore, assignmentScore, sameDayPenalty, lowAvailPenalty}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, crew := range result.Crews {
		query := `
			INSERT INTO scheduling_result_crews (scheduling_result_id, crew_id, name)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		var crewRowID int64
		if err := tx.QueryRowContext(ctx, query, result.ID, crew.CrewID, crew.Name).Scan(&crewRowID); err != nil {
			return err
		}

		for _, rowerID := range crew.MemberIDs {
			query := `
				INSERT INTO scheduling_result_crew_members (scheduling_result_crew_id, rower_id)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, crewRowID, rowerID); err != nil {
				return err
			}
		}

		for _, session := range crew.Sessions {
			query := `
				INSERT INTO scheduling_result_crew_sessions (scheduling_result_crew_id, day, timeslot)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.ExecContext(ctx, query, crewRowID, session.Day, session.Timeslot); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSchedulingResultByTrainingPlanID(trainingPlanID int64) (*domain.SchedulingResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, score, scheduling_score, assignment_score, same_day_penalty, low_availability_penalty, created_at, version
		FROM scheduling_results
		WHERE training_plan_id = $1
	`

	result := &domain.SchedulingResult{
		TrainingPlanID: trainingPlanID,
	}

	var score, schedulingScore, assignmentScore, sameDayPenalty, lowAvailPenalty sql.NullFloat64
	dst := []any{&result.ID, &score, &schedulingScore, &assignmentScore, &sameDayPenalty, &lowAvailPenalty, &result.CreatedAt, &result.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, trainingPlanID).Scan(dst...); err != nil {
		return nil, err
	}

	// 分数列为 NULL 表示这个结果是手工提交的
	if score.Valid {
		result.Fitness = &domain.FitnessBreakdown{
			Score:                  score.Float64,
			SchedulingScore:        schedulingScore.Float64,
			AssignmentScore:        assignmentScore.Float64,
			SameDayPenalty:         sameDayPenalty.Float64,
			LowAvailabilityPenalty: lowAvailPenalty.Float64,
		}
	}

	// 成员和训练时段分开查询，避免两张子表交叉连接产生重复行
	query = `
		SELECT
			src.id,
			src.crew_id,
			src.name,
			srcm.rower_id
		FROM scheduling_result_crews src
		LEFT JOIN scheduling_result_crew_members srcm ON src.id = srcm.scheduling_result_crew_id
		WHERE src.scheduling_result_id = $1
		ORDER BY src.id, srcm.rower_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, result.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crewsMap := make(map[int64]*domain.SchedulingResultCrew)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			crewRowID int64
			crewID    *int64
			name      string
			rowerID   sql.NullInt64
		}

		if err := rows.Scan(&row.crewRowID, &row.crewID, &row.name, &row.rowerID); err != nil {
			return nil, err
		}

		crew, exists := crewsMap[row.crewRowID]
		if !exists {
			crew = &domain.SchedulingResultCrew{
				CrewID:    row.crewID,
				Name:      row.name,
				MemberIDs: make([]int64, 0),
				Sessions:  make([]domain.SchedulingResultSession, 0),
			}
			crewsMap[row.crewRowID] = crew
			order = append(order, row.crewRowID)
		}

		if !row.rowerID.Valid {
			// 说明这个艇组没有任何成员，这在业务上是不可能的，
			// 但是为了代码的健壮性，这里还是需要处理
			continue
		}

		crew.MemberIDs = append(crew.MemberIDs, row.rowerID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT
			srcs.scheduling_result_crew_id,
			srcs.day,
			srcs.timeslot
		FROM scheduling_result_crew_sessions srcs
		JOIN scheduling_result_crews src ON srcs.scheduling_result_crew_id = src.id
		WHERE src.scheduling_result_id = $1
		ORDER BY srcs.day, srcs.timeslot
	`

	sessionRows, err := r.dbpool.QueryContext(ctx, query, result.ID)
	if err != nil {
		return nil, err
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		var crewRowID int64
		var session domain.SchedulingResultSession
		if err := sessionRows.Scan(&crewRowID, &session.Day, &session.Timeslot); err != nil {
			return nil, err
		}

		if crew, exists := crewsMap[crewRowID]; exists {
			crew.Sessions = append(crew.Sessions, session)
		}
	}

	if err := sessionRows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	result.Crews = make([]domain.SchedulingResultCrew, 0, len(order))
	for _, crewRowID := range order {
		result.Crews = append(result.Crews, *crewsMap[crewRowID])
	}

	return result, nil
}
