// Package storage persists users, profiles, detections, and alerts in
// SQLite for the alert API daemon.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/geo"
)

// User is a registered alert recipient.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile carries a user's location, alert radius, and preferences.
type Profile struct {
	UserID      int64           `json:"user_id"`
	Occupation  string          `json:"occupation,omitempty"`
	Address     string          `json:"address,omitempty"`
	AreaType    string          `json:"area_type,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Latitude    *float64        `json:"lat,omitempty"`
	Longitude   *float64        `json:"lon,omitempty"`
	RadiusKM    float64         `json:"radius_km"`
	Preferences map[string]bool `json:"preferences,omitempty"`
}

// Detection is a single wildlife detection event.
type Detection struct {
	ID         int64     `json:"id"`
	Species    string    `json:"species"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	Confidence *float64  `json:"confidence,omitempty"`
	DetectedAt time.Time `json:"detected_at"`
	UserID     *int64    `json:"user_id,omitempty"`
}

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SQLiteStore is the SQLite-backed store used by the daemon.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at path. Use ":memory:" for tests.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Init creates the schema if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			access_key TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER UNIQUE NOT NULL,
			occupation TEXT,
			address TEXT,
			area_type TEXT CHECK(area_type IN ('rural','semi-urban','urban') OR area_type = ''),
			phone TEXT,
			lat REAL,
			lon REAL,
			radius_km REAL DEFAULT 5,
			preferences TEXT,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS detections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			species TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			confidence REAL,
			detected_at TEXT NOT NULL,
			user_id INTEGER,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			detection_id INTEGER NOT NULL,
			distance_km REAL NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY(user_id) REFERENCES users(id),
			FOREIGN KEY(detection_id) REFERENCES detections(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id, created_at DESC);`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create schema")
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser registers a user with a default profile and returns the
// generated access key. The key is only available at registration time.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email string, lat, lon, radiusKM float64, prefs map[string]bool) (*User, string, error) {
	if prefs == nil {
		prefs = map[string]bool{"email": true, "sms": true, "push": true}
	}
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to encode preferences")
	}

	accessKey := uuid.NewString()
	createdAt := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, access_key, created_at) VALUES (?, ?, ?, ?)`,
		name, email, accessKey, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to insert user")
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read user id")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, lat, lon, radius_km, preferences) VALUES (?, ?, ?, ?, ?)`,
		userID, lat, lon, radiusKM, string(prefsJSON))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to insert profile")
	}

	return &User{ID: userID, Name: name, Email: email, CreatedAt: createdAt}, accessKey, nil
}

// UserByAccessKey resolves an access key to a user, or ErrNotFound.
func (s *SQLiteStore) UserByAccessKey(ctx context.Context, accessKey string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE access_key = ?`, accessKey)
	return scanUser(row)
}

// GetUser returns the user with the given id, or ErrNotFound.
func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to scan user")
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse created_at")
	}
	u.CreatedAt = t
	return &u, nil
}

// GetProfile returns the profile of the given user, or ErrNotFound.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, COALESCE(occupation,''), COALESCE(address,''), COALESCE(area_type,''),
		        COALESCE(phone,''), lat, lon, COALESCE(radius_km,5), COALESCE(preferences,'')
		 FROM profiles WHERE user_id = ?`, userID)

	var p Profile
	var prefsJSON string
	if err := row.Scan(&p.UserID, &p.Occupation, &p.Address, &p.AreaType,
		&p.Phone, &p.Latitude, &p.Longitude, &p.RadiusKM, &prefsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to scan profile")
	}

	if prefsJSON != "" {
		if err := json.Unmarshal([]byte(prefsJSON), &p.Preferences); err != nil {
			// Unreadable preferences fall back to the defaults.
			p.Preferences = map[string]bool{"email": true, "sms": true, "push": true}
		}
	}
	return &p, nil
}

// UpdateProfile replaces the profile fields of the given user.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, p Profile) error {
	prefsJSON, err := json.Marshal(p.Preferences)
	if err != nil {
		return errors.Wrap(err, "failed to encode preferences")
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE profiles
		 SET occupation = ?, address = ?, area_type = ?, phone = ?,
		     lat = ?, lon = ?, radius_km = ?, preferences = ?
		 WHERE user_id = ?`,
		p.Occupation, p.Address, p.AreaType, p.Phone,
		p.Latitude, p.Longitude, p.RadiusKM, string(prefsJSON), p.UserID)
	if err != nil {
		return errors.Wrap(err, "failed to update profile")
	}
	return nil
}

// InsertDetection records a detection event and returns its id.
func (s *SQLiteStore) InsertDetection(ctx context.Context, d Detection) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (species, lat, lon, confidence, detected_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Species, d.Latitude, d.Longitude, d.Confidence,
		d.DetectedAt.UTC().Format(time.RFC3339Nano), d.UserID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert detection")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read detection id")
	}
	return id, nil
}

// CreateAlertsForDetection fans a detection out to every user whose
// profile location lies within their configured radius. Returns the
// number of alerts created.
func (s *SQLiteStore) CreateAlertsForDetection(ctx context.Context, detectionID int64, lat, lon float64) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, lat, lon, radius_km FROM profiles
		 WHERE lat IS NOT NULL AND lon IS NOT NULL AND radius_km IS NOT NULL`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list profiles")
	}
	defer rows.Close()

	type target struct {
		userID     int64
		distanceKM float64
	}
	var targets []target
	for rows.Next() {
		var userID int64
		var plat, plon, radius float64
		if err := rows.Scan(&userID, &plat, &plon, &radius); err != nil {
			return 0, errors.Wrap(err, "failed to scan profile")
		}
		d := geo.HaversineKM(plat, plon, lat, lon)
		if d <= radius {
			targets = append(targets, target{userID: userID, distanceKM: math.Round(d*100) / 100})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "failed to iterate profiles")
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, tg := range targets {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO alerts (user_id, detection_id, distance_km, created_at) VALUES (?, ?, ?, ?)`,
			tg.userID, detectionID, tg.distanceKM, createdAt)
		if err != nil {
			return 0, errors.Wrap(err, "failed to insert alert")
		}
	}
	return len(targets), nil
}

// AlertsForUser returns the user's alerts joined with their detections,
// newest first, capped at limit.
func (s *SQLiteStore) AlertsForUser(ctx context.Context, userID int64, limit int) ([]alert.RawAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.distance_km, d.species, d.lat, d.lon, d.detected_at, d.confidence
		 FROM alerts a
		 JOIN detections d ON d.id = a.detection_id
		 WHERE a.user_id = ?
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query alerts")
	}
	defer rows.Close()

	alerts := []alert.RawAlert{}
	for rows.Next() {
		var a alert.RawAlert
		var detectedAt string
		if err := rows.Scan(&a.ID, &a.DistanceKM, &a.Species, &a.Latitude, &a.Longitude, &detectedAt, &a.Confidence); err != nil {
			return nil, errors.Wrap(err, "failed to scan alert")
		}
		t, err := time.Parse(time.RFC3339Nano, detectedAt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse detected_at")
		}
		a.DetectedAt = t
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// SpeciesCounts returns per-species alert counts for the user over all of
// their alerts.
func (s *SQLiteStore) SpeciesCounts(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.species, COUNT(*)
		 FROM alerts a
		 JOIN detections d ON d.id = a.detection_id
		 WHERE a.user_id = ?
		 GROUP BY d.species`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query species counts")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var species string
		var count int
		if err := rows.Scan(&species, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan species count")
		}
		counts[species] = count
	}
	return counts, rows.Err()
}
