package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepo interface {
	WithTransaction(ctx context.Context, fn func(repo EventRepo) error) error
	StoreEvent(ctx context.Context, event Event) error
	FindEvent(ctx context.Context, id string) (*Event, error)
	FindAllEvents(ctx context.Context) ([]Event, error)
	FindEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	FindEventsByIds(ctx context.Context, ids []string) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) error
	UpdateEventDates(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error
	DeleteEvent(ctx context.Context, id string) error
}

type EventRepoImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewEventRepo(db *sql.DB) *EventRepoImpl {
	return &EventRepoImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *EventRepoImpl) getQueryer() interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *EventRepoImpl) WithTransaction(ctx context.Context, fn func(repo EventRepo) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &EventRepoImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *EventRepoImpl) StoreEvent(ctx context.Context, event Event) error {
	query := `INSERT INTO event (
                            id,
                            title,
                            description,
                            start_time,
                            end_time,
                            location,
                            all_day,
                            draggable,
                            color,
                            category,
                            organizer,
                            contact_email,
                            attendees,
                            max_attendees,
                            tags,
                            created_at,
                            updated_at
						) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	stmt, err := r.getQueryer().PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		event.ID,
		event.Title,
		event.Description,
		event.Start.UnixMilli(),
		event.End.UnixMilli(),
		event.Location,
		boolToInt(event.AllDay),
		boolToInt(event.Draggable),
		event.Color,
		event.Category,
		event.Organizer,
		event.ContactEmail,
		event.Attendees,
		event.MaxAttendees,
		strings.Join(event.Tags, ","),
		event.CreatedAt.UnixMilli(),
		event.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}

	return r.replaceImages(ctx, event.ID, event.Images)
}

func (r *EventRepoImpl) FindEvent(ctx context.Context, id string) (*Event, error) {
	query := selectEventColumns + ` FROM event WHERE id = $1`

	row := r.getQueryer().QueryRowContext(ctx, query, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		err := fmt.Errorf("could not query event: %w", err)
		log.Error(err)
		return nil, err
	}

	images, err := r.findImages(ctx, []string{event.ID})
	if err != nil {
		return nil, err
	}
	event.Images = images[event.ID]
	return event, nil
}

func (r *EventRepoImpl) FindAllEvents(ctx context.Context) ([]Event, error) {
	query := selectEventColumns + ` FROM event ORDER BY start_time`
	return r.queryEvents(ctx, query)
}

// FindEvents returns events overlapping the given period: events that start
// before the end of the period and end after its start.
func (r *EventRepoImpl) FindEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := selectEventColumns + `
              FROM event
              WHERE start_time <= $1
                AND end_time >= $2
			  ORDER BY start_time`
	return r.queryEvents(ctx, query, to.UnixMilli(), from.UnixMilli())
}

func (r *EventRepoImpl) FindEventsByIds(ctx context.Context, ids []string) ([]Event, error) {
	if len(ids) == 0 {
		return []Event{}, nil
	}
	query := selectEventColumns + ` FROM event WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY start_time`

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return r.queryEvents(ctx, query, args...)
}

func (r *EventRepoImpl) UpdateEvent(ctx context.Context, event Event) error {
	query := `UPDATE event SET
                 title = $1,
                 description = $2,
                 start_time = $3,
                 end_time = $4,
                 location = $5,
                 all_day = $6,
                 draggable = $7,
                 color = $8,
                 category = $9,
                 organizer = $10,
                 contact_email = $11,
                 attendees = $12,
                 max_attendees = $13,
                 tags = $14,
                 updated_at = $15
              WHERE id = $16`

	stmt, err := r.getQueryer().PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %v", err)
		log.Error(err)
		return err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		event.Title,
		event.Description,
		event.Start.UnixMilli(),
		event.End.UnixMilli(),
		event.Location,
		boolToInt(event.AllDay),
		boolToInt(event.Draggable),
		event.Color,
		event.Category,
		event.Organizer,
		event.ContactEmail,
		event.Attendees,
		event.MaxAttendees,
		strings.Join(event.Tags, ","),
		event.UpdatedAt.UnixMilli(),
		event.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}

	return r.replaceImages(ctx, event.ID, event.Images)
}

// UpdateEventDates moves only the event span, leaving everything else as is.
// This is the persistence side of a drag-and-drop reschedule.
func (r *EventRepoImpl) UpdateEventDates(ctx context.Context, id string, start, end time.Time, updatedAt time.Time) error {
	query := `UPDATE event SET start_time = $1, end_time = $2, updated_at = $3 WHERE id = $4`

	result, err := r.getQueryer().ExecContext(ctx, query, start.UnixMilli(), end.UnixMilli(), updatedAt.UnixMilli(), id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %v", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *EventRepoImpl) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.getQueryer().ExecContext(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		err := fmt.Errorf("could not delete event: %v", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

const selectEventColumns = `SELECT id, title, description, start_time, end_time, location, all_day, draggable,
       color, category, organizer, contact_email, attendees, max_attendees, tags, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	var startMillis, endMillis, createdMillis, updatedMillis int64
	var allDay, draggable int
	var tags string

	err := row.Scan(&e.ID, &e.Title, &e.Description, &startMillis, &endMillis, &e.Location, &allDay, &draggable,
		&e.Color, &e.Category, &e.Organizer, &e.ContactEmail, &e.Attendees, &e.MaxAttendees, &tags,
		&createdMillis, &updatedMillis)
	if err != nil {
		return nil, err
	}

	e.Start = time.UnixMilli(startMillis)
	e.End = time.UnixMilli(endMillis)
	e.CreatedAt = time.UnixMilli(createdMillis)
	e.UpdatedAt = time.UnixMilli(updatedMillis)
	e.AllDay = allDay != 0
	e.Draggable = draggable != 0
	if tags != "" {
		e.Tags = strings.Split(tags, ",")
	}
	return &e, nil
}

func (r *EventRepoImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	ids := make([]string, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan event row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, *event)
		ids = append(ids, event.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	images, err := r.findImages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Images = images[events[i].ID]
	}

	return events, nil
}

func (r *EventRepoImpl) findImages(ctx context.Context, eventIds []string) (map[string][]Image, error) {
	result := make(map[string][]Image, len(eventIds))
	if len(eventIds) == 0 {
		return result, nil
	}

	query := `SELECT event_id, id, url, caption, is_primary, position
              FROM event_image
              WHERE event_id IN (` + placeholders(len(eventIds)) + `)
              ORDER BY event_id, position`

	args := make([]interface{}, 0, len(eventIds))
	for _, id := range eventIds {
		args = append(args, id)
	}

	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query event images: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventId string
		var img Image
		var isPrimary int
		if err := rows.Scan(&eventId, &img.ID, &img.URL, &img.Caption, &isPrimary, &img.Position); err != nil {
			return nil, fmt.Errorf("could not scan image row: %w", err)
		}
		img.IsPrimary = isPrimary != 0
		result[eventId] = append(result[eventId], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return result, nil
}

// replaceImages rewrites the image set of an event in display order.
func (r *EventRepoImpl) replaceImages(ctx context.Context, eventId string, images []Image) error {
	if _, err := r.getQueryer().ExecContext(ctx, `DELETE FROM event_image WHERE event_id = $1`, eventId); err != nil {
		return fmt.Errorf("could not clear event images: %w", err)
	}

	for _, img := range images {
		_, err := r.getQueryer().ExecContext(ctx,
			`INSERT INTO event_image (id, event_id, url, caption, is_primary, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			img.ID, eventId, img.URL, img.Caption, boolToInt(img.IsPrimary), img.Position)
		if err != nil {
			return fmt.Errorf("could not insert event image: %w", err)
		}
	}
	return nil
}

// placeholders builds a "$1, $2, ..." list for IN clauses. Numbered
// parameters work on both Postgres and SQLite.
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i)
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
