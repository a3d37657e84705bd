package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// Event is one emitted swipe.
type Event struct {
	ID        int64             `json:"id"`
	Direction gesture.Direction `json:"direction"`
	Key       string            `json:"key"`
	Mode      string            `json:"mode"`
	DX        float64           `json:"dx"`
	DY        float64           `json:"dy"`
	FiredAt   time.Time         `json:"fired_at"`
}

// EventRepository provides access to the swipe event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create appends e to the log and sets its ID.
func (r *EventRepository) Create(e *Event) error {
	if e.FiredAt.IsZero() {
		e.FiredAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO events (direction, key, mode, dx, dy, fired_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Direction), e.Key, e.Mode, e.DX, e.DY, e.FiredAt.UnixMilli(),
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// List returns up to limit events, newest first. A non-positive limit returns all.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, direction, key, mode, dx, dy, fired_at
		 FROM events ORDER BY fired_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var direction string
		var firedAt int64

		if err := rows.Scan(&e.ID, &direction, &e.Key, &e.Mode, &e.DX, &e.DY, &firedAt); err != nil {
			return nil, err
		}

		e.Direction = gesture.Direction(direction)
		e.FiredAt = time.UnixMilli(firedAt)
		events = append(events, e)
	}

	return events, rows.Err()
}

// Counts returns the number of logged events per direction. Directions that
// never fired are present with a zero count.
func (r *EventRepository) Counts() (map[gesture.Direction]int, error) {
	counts := make(map[gesture.Direction]int, len(gesture.Directions))
	for _, d := range gesture.Directions {
		counts[d] = 0
	}

	rows, err := r.db.Query(`SELECT direction, COUNT(*) FROM events GROUP BY direction`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var direction string
		var n int
		if err := rows.Scan(&direction, &n); err != nil {
			return nil, err
		}
		counts[gesture.Direction(direction)] = n
	}

	return counts, rows.Err()
}

// DeleteBefore removes events fired before t and returns how many were removed.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE fired_at < ?`, t.UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
