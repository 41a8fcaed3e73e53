package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (r *Repository) InsertAvailabilitySubmission(submission *domain.AvailabilitySubmission) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先把原先的记录删除再插入
	query := `DELETE FROM availability_submissions WHERE rower_id = $1 AND training_plan_id = $2`
	if _, err := tx.ExecContext(ctx, query, submission.RowerID, submission.TrainingPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO availability_submissions (rower_id, training_plan_id)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, submission.RowerID, submission.TrainingPlanID).Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return err
	}

	for _, item := range submission.Items {
		query := `
			INSERT INTO availability_submission_items (availability_submission_id, day)
			VALUES ($1, $2)
			RETURNING id
		`
		var itemID int64
		if err := tx.QueryRowContext(ctx, query, submission.ID, item.Day).Scan(&itemID); err != nil {
			return err
		}

		for _, timeslot := range item.Timeslots {
			query := `
				INSERT INTO availability_submission_item_timeslots (availability_submission_item_id, timeslot)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, itemID, timeslot); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAvailabilitySubmissionByRowerIDAndTrainingPlanID(rowerID int64, trainingPlanID int64) (*domain.AvailabilitySubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, created_at, version
		FROM availability_submissions
		WHERE rower_id = $1 AND training_plan_id = $2
	`

	submission := &domain.AvailabilitySubmission{
		RowerID:        rowerID,
		TrainingPlanID: trainingPlanID,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, rowerID, trainingPlanID).Scan(&submission.ID, &submission.CreatedAt, &submission.Version); err != nil {
		return nil, err
	}

	itemsMap := make(map[int64]*domain.AvailabilitySubmissionItem)

	query = `
		SELECT
			asi.id,
			asi.day,
			asit.timeslot
		FROM availability_submission_items asi
		LEFT JOIN availability_submission_item_timeslots asit
			ON asi.id = asit.availability_submission_item_id
		WHERE asi.availability_submission_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, submission.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var row struct {
			itemID   int64
			day      int32
			timeslot sql.NullInt32
		}

		if err := rows.Scan(&row.itemID, &row.day, &row.timeslot); err != nil {
			return nil, err
		}

		if _, exists := itemsMap[row.itemID]; !exists {
			itemsMap[row.itemID] = &domain.AvailabilitySubmissionItem{
				Day:       row.day,
				Timeslots: make([]int32, 0),
			}
		}

		if row.timeslot.Valid {
			itemsMap[row.itemID].Timeslots = append(itemsMap[row.itemID].Timeslots, row.timeslot.Int32)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	submission.Items = make([]domain.AvailabilitySubmissionItem, 0, len(itemsMap))
	for _, item := range itemsMap {
		submission.Items = append(submission.Items, *item)
	}

	return submission, nil
}

func (r *Repository) GetAllSubmissionsByTrainingPlanID(trainingPlanID int64) ([]*domain.AvailabilitySubmission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			asm.id,
			asm.rower_id,
			asmi.id,
			asmi.day,
			asmit.timeslot,
			asm.created_at,
			asm.version
		FROM availability_submissions asm
		LEFT JOIN availability_submission_items asmi ON asm.id = asmi.availability_submission_id
		LEFT JOIN availability_submission_item_timeslots asmit ON asmi.id = asmit.availability_submission_item_id
		WHERE asm.training_plan_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, trainingPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissionsMap := make(map[int64]*domain.AvailabilitySubmission)
	itemsMap := make(map[int64]map[int64]*domain.AvailabilitySubmissionItem) // submissionID -> itemID -> item

	for rows.Next() {
		var row struct {
			submissionID int64
			rowerID      int64
			itemID       sql.NullInt64
			day          sql.NullInt32
			timeslot     sql.NullInt32
			createdAt    time.Time
			version      int32
		}

		dst := []any{
			&row.submissionID,
			&row.rowerID,
			&row.itemID,
			&row.day,
			&row.timeslot,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := submissionsMap[row.submissionID]; !exists {
			submissionsMap[row.submissionID] = &domain.AvailabilitySubmission{
				ID:             row.submissionID,
				TrainingPlanID: trainingPlanID,
				RowerID:        row.rowerID,
				CreatedAt:      row.createdAt,
				Version:        row.version,
			}
			itemsMap[row.submissionID] = make(map[int64]*domain.AvailabilitySubmissionItem)
		}

		if !row.itemID.Valid {
			// 表示这条提交记录没有提交任何天数，虽然业务上不可能出现这种情况
			// 但为了提高代码的健壮性，这边还是需要处理
			continue
		}

		if _, exists := itemsMap[row.submissionID][row.itemID.Int64]; !exists {
			itemsMap[row.submissionID][row.itemID.Int64] = &domain.AvailabilitySubmissionItem{
				Day:       row.day.Int32,
				Timeslots: make([]int32, 0),
			}
		}

		if !row.timeslot.Valid {
			// 表示这一天该队员没有提交任何有空的时段
			continue
		}

		itemsMap[row.submissionID][row.itemID.Int64].Timeslots = append(itemsMap[row.submissionID][row.itemID.Int64].Timeslots, row.timeslot.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	for submissionID, submission := range submissionsMap {
		submission.Items = make([]domain.AvailabilitySubmissionItem, 0, len(itemsMap[submissionID]))
		for _, item := range itemsMap[submissionID] {
			submission.Items = append(submission.Items, *item)
		}
	}

	submissions := make([]*domain.AvailabilitySubmission, 0, len(submissionsMap))
	for _, submission := range submissionsMap {
		submissions = append(submissions, submission)
	}

	return submissions, nil
}
