package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Storage provisions and connects to libsql databases holding sweep results.
type Storage struct {
	OrgName   string
	GroupName string
	ApiToken  string
	AuthToken string
}

func (s *Storage) CreateDatabase(name string) error {
	url := fmt.Sprintf("https://api.turso.tech/v1/organizations/%v/databases", s.OrgName)
	req, err := http.NewRequest("POST", url, bytes.NewReader([]byte(fmt.Sprintf(`{"name":"%v","group":"%v"}`, name, s.GroupName))))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+s.ApiToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code %v: %v", resp.StatusCode, string(body))
	}
	Logger.Infof("created results database %v", name)
	return nil
}

func (s *Storage) ConnectDb(name string) (*sql.DB, error) {
	url := fmt.Sprintf("libsql://%v-%v.turso.io?authToken=%v", name, s.OrgName, s.AuthToken)
	return sql.Open("libsql", url)
}

func (s *Storage) DbLink(name string) string {
	return fmt.Sprintf("%v-%v.turso.io", name, s.OrgName)
}

// DbSink writes run parameters and measurements into a results database.
type DbSink struct {
	db *sql.DB
}

func NewDbSink(db *sql.DB) (*DbSink, error) {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS parameters (name TEXT PRIMARY KEY, value)")
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		sweep TEXT,
		topology TEXT,
		nodes INTEGER,
		query TEXT,
		attempt INTEGER,
		measurement TEXT,
		value REAL,
		PRIMARY KEY (sweep, topology, nodes, query, attempt, measurement)
	)`)
	if err != nil {
		return nil, err
	}
	Logger.Infof("initialized results database schema")
	return &DbSink{db: db}, nil
}

func (s *DbSink) RecordParameters(params map[string]any) error {
	for name, value := range params {
		_, err := s.db.Exec(
			"INSERT INTO parameters VALUES (?, ?) ON CONFLICT DO NOTHING",
			name,
			fmt.Sprintf("%v", value),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *DbSink) RecordMeasurements(measurements []Measurement) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	for _, m := range measurements {
		_, err = tx.Exec(
			"INSERT INTO measurements VALUES (?, ?, ?, ?, ?, ?, ?)",
			m.Sweep,
			m.Topology,
			m.Nodes,
			m.Query,
			m.Attempt,
			"total_time",
			m.Seconds,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WrittenQueries reports which queries of a sweep already have measurements,
// so an interrupted run can resume without repeating work.
func (s *DbSink) WrittenQueries(sweep string) (map[string]bool, error) {
	rows, err := s.db.Query("SELECT DISTINCT query FROM measurements WHERE sweep = ?", sweep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		results[name] = true
	}
	return results, rows.Err()
}

// MemorySink keeps results in process memory. Used for dry runs and when no
// storage credentials are configured; the run summary is logged instead of
// persisted.
type MemorySink struct {
	Params       map[string]any
	Measurements []Measurement
}

func (s *MemorySink) RecordParameters(params map[string]any) error {
	if s.Params == nil {
		s.Params = make(map[string]any, len(params))
	}
	for name, value := range params {
		s.Params[name] = value
	}
	return nil
}

func (s *MemorySink) RecordMeasurements(measurements []Measurement) error {
	s.Measurements = append(s.Measurements, measurements...)
	return nil
}
