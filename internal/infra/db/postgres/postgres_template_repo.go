package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ai-debate-orchestrator/internal/domain"
	"ai-debate-orchestrator/internal/domain/model"
	"ai-debate-orchestrator/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.TemplateStore = (*PostgresTemplateRepo)(nil)

type PostgresTemplateRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTemplateRepo(pool *pgxpool.Pool) *PostgresTemplateRepo {
	return &PostgresTemplateRepo{pool: pool}
}

func (r *PostgresTemplateRepo) Save(ctx context.Context, tpl *model.DebateTemplate) error {
	participants, err := json.Marshal(tpl.Participants)
	if err != nil {
		return fmt.Errorf("Save template: marshal participants: %w", err)
	}
	const sql = `
INSERT INTO debate_templates (id, name, description, style, max_rounds, participants, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET name         = EXCLUDED.name,
      description  = EXCLUDED.description,
      style        = EXCLUDED.style,
      max_rounds   = EXCLUDED.max_rounds,
      participants = EXCLUDED.participants,
      updated_at   = EXCLUDED.updated_at;
`
	_, err = r.pool.Exec(ctx, sql,
		tpl.ID, tpl.Name, tpl.Description, string(tpl.Style), tpl.MaxRounds,
		participants, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Save template: %w", err)
	}
	return nil
}

func (r *PostgresTemplateRepo) FindByID(ctx context.Context, id string) (*model.DebateTemplate, error) {
	const sql = `
SELECT id, name, description, style, max_rounds, participants, created_at, updated_at
  FROM debate_templates
 WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, sql, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID template: %w", err)
	}
	return tpl, nil
}

func (r *PostgresTemplateRepo) ListAll(ctx context.Context) ([]*model.DebateTemplate, error) {
	const sql = `
SELECT id, name, description, style, max_rounds, participants, created_at, updated_at
  FROM debate_templates
 ORDER BY created_at;
`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("ListAll templates: %w", err)
	}
	defer rows.Close()
	var out []*model.DebateTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r *PostgresTemplateRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM debate_templates WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("Delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*model.DebateTemplate, error) {
	var (
		tpl          model.DebateTemplate
		style        string
		participants []byte
	)
	if err := row.Scan(&tpl.ID, &tpl.Name, &tpl.Description, &style, &tpl.MaxRounds,
		&participants, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return nil, err
	}
	tpl.Style = model.DebateStyle(style)
	if err := json.Unmarshal(participants, &tpl.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}
	return &tpl, nil
}
