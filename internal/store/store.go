// Package store persists observed (user, location) sightings to a local
// sqlite database and answers "who is in <place>" queries from it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Sighting is one observed (user, location) pair.
type Sighting struct {
	Server    string
	Channel   string
	User      string
	IP        string
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Country   string
	Zip       string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			server TEXT NOT NULL,
			channel TEXT NOT NULL,
			user TEXT NOT NULL,
			ip TEXT NOT NULL,
			latitude REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			city TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			zipcode TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_log_server_channel ON log(server, channel)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes one sighting. Fire-and-forget from the caller's point of
// view; the engine logs and moves on when this fails.
func (s *Store) Append(sg Sighting) error {
	_, err := s.db.Exec(
		`INSERT INTO log (server, channel, user, ip, latitude, longitude, city, region, country, zipcode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sg.Server, sg.Channel, sg.User, sg.IP,
		sg.Latitude, sg.Longitude, sg.City, sg.Region, sg.Country, sg.Zip,
	)
	if err != nil {
		return fmt.Errorf("append sighting: %w", err)
	}
	return nil
}

// FindPeopleIn returns the distinct users last seen in a place (matched
// against country, region or city), most recent first.
func (s *Store) FindPeopleIn(server, channel, place string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT user FROM log
		 WHERE server = ? AND channel = ?
		   AND (country LIKE ? OR region LIKE ? OR city LIKE ?)
		 ORDER BY created_at DESC`,
		server, channel, place, place, place,
	)
	if err != nil {
		return nil, fmt.Errorf("query people in %q: %w", place, err)
	}
	defer rows.Close()

	var people []string
	for rows.Next() {
		var user string
		if err := rows.Scan(&user); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		people = append(people, user)
	}
	return people, rows.Err()
}
