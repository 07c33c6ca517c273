package subscription

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, sub Subscription) error
	Delete(ctx context.Context, userId, eventId string) error
	Exists(ctx context.Context, userId, eventId string) (bool, error)
	EventIdsForUser(ctx context.Context, userId string) ([]string, error)
	CountForEvent(ctx context.Context, eventId string) (int, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, sub Subscription) error {
	query := `INSERT INTO subscription (user_id, event_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, sub.UserID, sub.EventID, sub.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not store subscription: %v", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId, eventId string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscription WHERE user_id = $1 AND event_id = $2`, userId, eventId)
	if err != nil {
		err := fmt.Errorf("could not delete subscription: %v", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

func (r *RepositoryImpl) Exists(ctx context.Context, userId, eventId string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM subscription WHERE user_id = $1 AND event_id = $2`, userId, eventId).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("could not query subscription: %w", err)
	}
	return count > 0, nil
}

func (r *RepositoryImpl) EventIdsForUser(ctx context.Context, userId string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id FROM subscription WHERE user_id = $1 ORDER BY created_at`, userId)
	if err != nil {
		err := fmt.Errorf("could not query subscriptions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 10)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("could not scan subscription row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return ids, nil
}

func (r *RepositoryImpl) CountForEvent(ctx context.Context, eventId string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM subscription WHERE event_id = $1`, eventId).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count subscriptions: %w", err)
	}
	return count, nil
}
