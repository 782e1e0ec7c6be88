package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SceneRepo stores scene documents in PostgreSQL. Every save also appends a
// row to scene_revisions in the same transaction.
type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

func (r *SceneRepo) Save(ctx context.Context, name string, formatVersion int, document []byte) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save scene begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO scenes (name, format_version, document)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET format_version = EXCLUDED.format_version,
		     document = EXCLUDED.document,
		     updated_at = now()`,
		name, formatVersion, document,
	); err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO scene_revisions (scene_name, format_version, document) VALUES ($1, $2, $3)`,
		name, formatVersion, document,
	); err != nil {
		return fmt.Errorf("save scene revision %s: %w", name, err)
	}
	return tx.Commit(ctx)
}

func (r *SceneRepo) Load(ctx context.Context, name string) (*StoredScene, error) {
	row := &StoredScene{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, format_version, document::text, updated_at FROM scenes WHERE name = $1`, name,
	).Scan(&row.Name, &row.FormatVersion, &row.Document, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", name, err)
	}
	return row, nil
}

func (r *SceneRepo) List(ctx context.Context) ([]SceneInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, format_version, octet_length(document::text), updated_at
		 FROM scenes ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var out []SceneInfo
	for rows.Next() {
		var info SceneInfo
		if err := rows.Scan(&info.Name, &info.FormatVersion, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *SceneRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM scenes WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete scene %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, ErrSceneNotFound)
	}
	return nil
}

// Revisions returns the save times of a scene, newest first.
func (r *SceneRepo) Revisions(ctx context.Context, name string, limit int) ([]time.Time, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT saved_at FROM scene_revisions WHERE scene_name = $1 ORDER BY saved_at DESC LIMIT $2`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions %s: %w", name, err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}
