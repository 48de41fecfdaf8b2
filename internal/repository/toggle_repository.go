package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
)

// ToggleRepository is the interaction ledger. Every method runs on the
// caller's Querier: the engine owns the transaction, the ledger owns the SQL.
//
// Rows are never hard-deleted. A pair toggles off by setting is_deleted and
// back on by clearing it, which keeps created_at stable and guarantees at
// most one row per (subject, object) pair.
type ToggleRepository interface {
	FindForUpdate(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64) (*domain.ToggleRecord, error)
	Insert(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64) (bool, error)
	SetDeleted(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64, deleted bool) error
	IsActive(ctx context.Context, kind domain.ToggleKind, subjectID, objectID int64) (bool, error)
	CountActive(ctx context.Context, kind domain.ToggleKind, objectID int64) (int64, error)
	CountBySubject(ctx context.Context, kind domain.ToggleKind, subjectID int64) (int64, error)
	ListObjectIDs(ctx context.Context, kind domain.ToggleKind, subjectID int64, limit, offset int) ([]int64, error)
	ListSubjectIDs(ctx context.Context, kind domain.ToggleKind, objectID int64, limit, offset int) ([]int64, error)
}

type toggleRepository struct {
	db DB
}

// NewToggleRepository instantiates the ledger.
func NewToggleRepository(db DB) ToggleRepository {
	return &toggleRepository{db: db}
}

// tableFor maps each kind onto its ledger table. The switch is exhaustive
// over the closed kind set.
func tableFor(kind domain.ToggleKind) (string, error) {
	switch kind {
	case domain.KindArticleLike:
		return "article_likes", nil
	case domain.KindArticleCollect:
		return "article_collects", nil
	case domain.KindCommentLike:
		return "comment_likes", nil
	case domain.KindUserFollow:
		return "user_follows", nil
	}
	return "", fmt.Errorf("unknown toggle kind %d", kind)
}

// FindForUpdate fetches the pair's row regardless of soft-delete state and
// locks it for the duration of the transaction, serializing concurrent
// toggles from the same actor on the same object.
func (r *toggleRepository) FindForUpdate(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64) (*domain.ToggleRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, subject_id, object_id, is_deleted, created_at FROM ` + table +
		` WHERE subject_id=$1 AND object_id=$2 FOR UPDATE`

	var rec domain.ToggleRecord
	err = q.QueryRow(ctx, query, subjectID, objectID).Scan(
		&rec.ID,
		&rec.SubjectID,
		&rec.ObjectID,
		&rec.Deleted,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert creates the pair's row. On a first-insert race the conflict clause
// waits for the winner's transaction and then inserts nothing; the false
// return tells the caller to re-read the winner's row instead of failing.
func (r *toggleRepository) Insert(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	query := `INSERT INTO ` + table + ` (subject_id, object_id, is_deleted) VALUES ($1,$2,FALSE)
        ON CONFLICT (subject_id, object_id) DO NOTHING`
	cmd, err := q.Exec(ctx, query, subjectID, objectID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *toggleRepository) SetDeleted(ctx context.Context, q Querier, kind domain.ToggleKind, subjectID, objectID int64, deleted bool) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + ` SET is_deleted=$1 WHERE subject_id=$2 AND object_id=$3`
	cmd, err := q.Exec(ctx, query, deleted, subjectID, objectID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IsActive reports whether the pair is currently toggled on. Read-only;
// no lock is taken.
func (r *toggleRepository) IsActive(ctx context.Context, kind domain.ToggleKind, subjectID, objectID int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	query := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE subject_id=$1 AND object_id=$2 AND is_deleted=FALSE)`
	var active bool
	if err := r.db.QueryRow(ctx, query, subjectID, objectID).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// CountActive counts live memberships for an object. Repair and listing
// paths only; the hot path reads the denormalized counters instead.
func (r *toggleRepository) CountActive(ctx context.Context, kind domain.ToggleKind, objectID int64) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE object_id=$1 AND is_deleted=FALSE`
	var count int64
	if err := r.db.QueryRow(ctx, query, objectID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountBySubject counts the subject's live memberships. Backs listing
// totals such as the collections page.
func (r *toggleRepository) CountBySubject(ctx context.Context, kind domain.ToggleKind, subjectID int64) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE subject_id=$1 AND is_deleted=FALSE`
	var count int64
	if err := r.db.QueryRow(ctx, query, subjectID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListObjectIDs returns objects the subject is actively toggled onto,
// newest first. Backs the following list.
func (r *toggleRepository) ListObjectIDs(ctx context.Context, kind domain.ToggleKind, subjectID int64, limit, offset int) ([]int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT object_id FROM ` + table +
		` WHERE subject_id=$1 AND is_deleted=FALSE ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listIDs(ctx, query, subjectID, limit, offset)
}

// ListSubjectIDs returns actors actively toggled onto the object, newest
// first. Backs the followers list.
func (r *toggleRepository) ListSubjectIDs(ctx context.Context, kind domain.ToggleKind, objectID int64, limit, offset int) ([]int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT subject_id FROM ` + table +
		` WHERE object_id=$1 AND is_deleted=FALSE ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listIDs(ctx, query, objectID, limit, offset)
}

func (r *toggleRepository) listIDs(ctx context.Context, query string, id int64, limit, offset int) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}
