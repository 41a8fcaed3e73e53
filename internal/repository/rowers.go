package repository

import (
	"context"
	"time"

	"github.com/sysu-rowing-dev/crew-scheduler/backend/internal/domain"
)

func (r *Repository) GetRowerByID(id int64) (*domain.Rower, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_active, crew_id, created_at, version
		FROM rowers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rower := &domain.Rower{
		ID: id,
	}

	dst := []any{&rower.Username, &rower.PasswordHash, &rower.FullName, &rower.Email, &rower.Role, &rower.IsActive, &rower.CrewID, &rower.CreatedAt, &rower.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadRowerTraits(ctx, rower); err != nil {
		return nil, err
	}

	return rower, nil
}

func (r *Repository) GetRowerByUsername(username string) (*domain.Rower, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, is_active, crew_id, created_at, version
		FROM rowers WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rower := &domain.Rower{
		Username: username,
	}

	dst := []any{&rower.ID, &rower.PasswordHash, &rower.FullName, &rower.Email, &rower.Role, &rower.IsActive, &rower.CrewID, &rower.CreatedAt, &rower.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadRowerTraits(ctx, rower); err != nil {
		return nil, err
	}

	return rower, nil
}

// loadRowerTraits 加载单个队员的体征向量，按维度顺序排列
func (r *Repository) loadRowerTraits(ctx context.Context, rower *domain.Rower) error {
	query := `
		SELECT value FROM rower_traits WHERE rower_id = $1 ORDER BY position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, rower.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	rower.Traits = make([]float64, 0)
	for rows.Next() {
		var value float64
		if err := rows.Scan(&value); err != nil {
			return err
		}
		rower.Traits = append(rower.Traits, value)
	}

	return rows.Err()
}

func (r *Repository) GetAllRowers() ([]*domain.Rower, error) {
	query := `
		SELECT
			r.id,
			r.username,
			r.password_hash,
			r.full_name,
			r.email,
			r.role,
			r.is_active,
			r.crew_id,
			r.created_at,
			r.version,
			rt.value
		FROM rowers r
		LEFT JOIN rower_traits rt ON r.id = rt.rower_id
		ORDER BY r.id, rt.position
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rowersMap := make(map[int64]*domain.Rower)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			rower domain.Rower
			value *float64
		}

		dst := []any{
			&row.rower.ID,
			&row.rower.Username,
			&row.rower.PasswordHash,
			&row.rower.FullName,
			&row.rower.Email,
			&row.rower.Role,
			&row.rower.IsActive,
			&row.rower.CrewID,
			&row.rower.CreatedAt,
			&row.rower.Version,
			&row.value,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		rower, exists := rowersMap[row.rower.ID]
		if !exists {
			// 说明此时是第一次查到这个队员，需要在 map 中初始化
			rower = &row.rower
			rower.Traits = make([]float64, 0)
			rowersMap[rower.ID] = rower
			order = append(order, rower.ID)
		}

		// value 为空表示这个队员没有录入任何体征
		if row.value != nil {
			rower.Traits = append(rower.Traits, *row.value)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rowers := make([]*domain.Rower, 0, len(order))
	for _, id := range order {
		rowers = append(rowers, rowersMap[id])
	}

	return rowers, nil
}

func (r *Repository) CreateRower(rower *domain.Rower) error {
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
		INSERT INTO rowers (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{rower.Username, rower.PasswordHash, rower.FullName, rower.Email, rower.Role}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&rower.ID, &rower.IsActive, &rower.CreatedAt, &rower.Version); err != nil {
		return err
	}

	for position, value := range rower.Traits {
		query := `
			INSERT INTO rower_traits (rower_id, position, value)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, rower.ID, position, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateRower(rower *domain.Rower) error {
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
		UPDATE rowers
		SET
		    password_hash = $1,
			email = $2,
			role = $3,
			is_active = $4,
			crew_id = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING username, full_name, created_at, version
	`

	args := []any{rower.PasswordHash, rower.Email, rower.Role, rower.IsActive, rower.CrewID, rower.ID, rower.Version}
	dst := []any{&rower.Username, &rower.FullName, &rower.CreatedAt, &rower.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	// 先把原先的体征删除再插入
	query = `DELETE FROM rower_traits WHERE rower_id = $1`
	if _, err := tx.ExecContext(ctx, query, rower.ID); err != nil {
		return err
	}

	for position, value := range rower.Traits {
		query := `
			INSERT INTO rower_traits (rower_id, position, value)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, rower.ID, position, value); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRower(id int64) error {
	query := `
		DELETE FROM rowers WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM rowers WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
