package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (r *Repository) GetAllCrews() ([]*domain.Crew, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			c.id,
			c.name,
			c.created_at,
			c.version,
			r.id
		FROM crews c
		LEFT JOIN rowers r ON c.id = r.crew_id
		ORDER BY c.id, r.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crewsMap := make(map[int64]*domain.Crew)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID        int64
			Name      string
			CreatedAt time.Time
			Version   int32
			RowerID   sql.NullInt64
		}

		dst := []any{&row.ID, &row.Name, &row.CreatedAt, &row.Version, &row.RowerID}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		crew, exists := crewsMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个艇组，需要在 map 中初始化
			crew = &domain.Crew{
				ID:        row.ID,
				Name:      row.Name,
				MemberIDs: make([]int64, 0),
				CreatedAt: row.CreatedAt,
				Version:   row.Version,
			}
			crewsMap[row.ID] = crew
			order = append(order, row.ID)
		}

		// 如果 RowerID 为空，则表示这个艇组还没有任何成员
		if !row.RowerID.Valid {
			continue
		}

		crew.MemberIDs = append(crew.MemberIDs, row.RowerID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	crews := make([]*domain.Crew, 0, len(order))
	for _, id := range order {
		crews = append(crews, crewsMap[id])
	}

	return crews, nil
}

func (r *Repository) GetCrewByID(id int64) (*domain.Crew, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, created_at, version
		FROM crews WHERE id = $1
	`

	crew := &domain.Crew{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&crew.Name, &crew.CreatedAt, &crew.Version); err != nil {
		return nil, err
	}

	query = `
		SELECT id FROM rowers WHERE crew_id = $1 ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crew.MemberIDs = make([]int64, 0)
	for rows.Next() {
		var rowerID int64
		if err := rows.Scan(&rowerID); err != nil {
			return nil, err
		}
		crew.MemberIDs = append(crew.MemberIDs, rowerID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return crew, nil
}

func (r *Repository) CreateCrew(crew *domain.Crew) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO crews (name)
		VALUES ($1)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, crew.Name).Scan(&crew.ID, &crew.CreatedAt, &crew.Version); err != nil {
		return err
	}

	for _, memberID := range crew.MemberIDs {
		query := `
			UPDATE rowers SET crew_id = $1, version = version + 1 WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, query, crew.ID, memberID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateCrew(crew *domain.Crew) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE crews
		SET
			name = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, crew.Name, crew.ID, crew.Version).Scan(&crew.Version); err != nil {
		return err
	}

	// 先解散艇组再重新设置成员
	query = `UPDATE rowers SET crew_id = NULL, version = version + 1 WHERE crew_id = $1`
	if _, err := tx.ExecContext(ctx, query, crew.ID); err != nil {
		return err
	}

	for _, memberID := range crew.MemberIDs {
		query := `
			UPDATE rowers SET crew_id = $1, version = version + 1 WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, query, crew.ID, memberID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCrew(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// rowers.crew_id 的外键是 ON DELETE SET NULL，解散后的队员会回到待分组状态
	query := `
		DELETE FROM crews WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
