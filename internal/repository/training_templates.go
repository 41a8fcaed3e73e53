package repository

import (
	"context"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (r *Repository) GetAllTrainingTemplates() ([]*domain.TrainingTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			id,
			name,
			description,
			num_days,
			timeslots_per_day,
			boats_per_slot,
			courses_per_crew,
			crew_size,
			min_available,
			created_at,
			version
		FROM training_templates
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]*domain.TrainingTemplate, 0)
	for rows.Next() {
		template := &domain.TrainingTemplate{}
		dst := []any{
			&template.ID,
			&template.Name,
			&template.Description,
			&template.NumDays,
			&template.TimeslotsPerDay,
			&template.BoatsPerSlot,
			&template.CoursesPerCrew,
			&template.CrewSize,
			&template.MinAvailable,
			&template.CreatedAt,
			&template.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repository) GetTrainingTemplate(id int64) (*domain.TrainingTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			name,
			description,
			num_days,
			timeslots_per_day,
			boats_per_slot,
			courses_per_crew,
			crew_size,
			min_available,
			created_at,
			version
		FROM training_templates
		WHERE id = $1
	`

	template := &domain.TrainingTemplate{
		ID: id,
	}

	dst := []any{
		&template.Name,
		&template.Description,
		&template.NumDays,
		&template.TimeslotsPerDay,
		&template.BoatsPerSlot,
		&template.CoursesPerCrew,
		&template.CrewSize,
		&template.MinAvailable,
		&template.CreatedAt,
		&template.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return template, nil
}

func (r *Repository) CreateTrainingTemplate(template *domain.TrainingTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO training_templates (
			name,
			description,
			num_days,
			timeslots_per_day,
			boats_per_slot,
			courses_per_crew,
			crew_size,
			min_available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	params := []any{
		template.Name,
		template.Description,
		template.NumDays,
		template.TimeslotsPerDay,
		template.BoatsPerSlot,
		template.CoursesPerCrew,
		template.CrewSize,
		template.MinAvailable,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&template.ID, &template.CreatedAt, &template.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateTrainingTemplate(template *domain.TrainingTemplate) error {
	// 时段和船位相关的参数不允许更新，不然已有的空闲提交和排期结果都会失效
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE training_templates
		SET
			name = $1,
			description = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	params := []any{template.Name, template.Description, template.ID, template.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&template.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTrainingTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM training_templates WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTrainingTemplateID(name string) (int64, error) {
	query := `SELECT id FROM training_templates WHERE name = $1`

	var id int64
	if err := r.dbpool.QueryRowContext(context.Background(), query, name).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}
