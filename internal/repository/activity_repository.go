package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealer-service/internal/domain"
)

// ActivityRepository persists the audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}

// ActivityFilter defines query params for activity listing.
type ActivityFilter struct {
	ActorID    *string
	EntityType *string
	EntityID   *string
	Limit      int
	Offset     int
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activities (actor_id, actor_name, action, entity_type, entity_id, metadata)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		activity.ActorID,
		activity.ActorName,
		activity.Action,
		activity.EntityType,
		activity.EntityID,
		activity.Metadata,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id=$%d", len(args)))
	}
	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		clauses = append(clauses, fmt.Sprintf("entity_type=$%d", len(args)))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		clauses = append(clauses, fmt.Sprintf("entity_id=$%d", len(args)))
	}

	query := `SELECT id, actor_id, actor_name, action, entity_type, entity_id, metadata, created_at FROM activities`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.ActorID,
			&activity.ActorName,
			&activity.Action,
			&activity.EntityType,
			&activity.EntityID,
			&activity.Metadata,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
