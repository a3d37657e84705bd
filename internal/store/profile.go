package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/swipekeys/internal/gesture"
)

// Profile is a named recognizer tuning with its key binding.
type Profile struct {
	ID        string
	Name      string
	Gesture   gesture.Config
	KeySet    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, history_ms, cooldown_ms, dx_thresh, dy_thresh,
	neutral_radius, neutral_hold_ms, auto_rearm_ms, key_set, created_at, updated_at`

// Create inserts a new profile.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	c := p.Gesture
	_, err := r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name,
		c.HistoryWindow.Milliseconds(), c.Cooldown.Milliseconds(), c.DXThresh, c.DYThresh,
		c.NeutralRadius, c.NeutralHold.Milliseconds(), c.AutoRearm.Milliseconds(),
		p.KeySet, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
}

// GetByName retrieves a profile by its unique name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return r.getOne(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name)
}

func (r *ProfileRepository) getOne(query string, arg any) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns all profiles ordered by name.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// Update overwrites the name, tuning and key set of an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	c := p.Gesture
	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, history_ms = ?, cooldown_ms = ?, dx_thresh = ?, dy_thresh = ?,
			neutral_radius = ?, neutral_hold_ms = ?, auto_rearm_ms = ?, key_set = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		c.HistoryWindow.Milliseconds(), c.Cooldown.Milliseconds(), c.DXThresh, c.DYThresh,
		c.NeutralRadius, c.NeutralHold.Milliseconds(), c.AutoRearm.Milliseconds(),
		p.KeySet, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return affectOne(result)
}

// Delete removes a profile by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectOne(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var historyMs, cooldownMs, holdMs, rearmMs int64

	err := row.Scan(
		&p.ID, &p.Name, &historyMs, &cooldownMs, &p.Gesture.DXThresh, &p.Gesture.DYThresh,
		&p.Gesture.NeutralRadius, &holdMs, &rearmMs, &p.KeySet, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Gesture.HistoryWindow = time.Duration(historyMs) * time.Millisecond
	p.Gesture.Cooldown = time.Duration(cooldownMs) * time.Millisecond
	p.Gesture.NeutralHold = time.Duration(holdMs) * time.Millisecond
	p.Gesture.AutoRearm = time.Duration(rearmMs) * time.Millisecond
	return p, nil
}
