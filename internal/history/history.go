package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound reports a lookup for a record id that does not exist.
var ErrNotFound = errors.New("history record not found")

// Record is one persisted quote: the input document snapshot, the result
// snapshot computed from it, and a free-form workflow status.
type Record struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
}

// Store persists quote history records.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save inserts a new record with a fresh id and the default "draft" status.
func (s *Store) Save(label string, input, result []byte) (Record, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO quote_history (id, label, input_json, result_json)
		VALUES (?, ?, ?, ?)
	`, id, label, string(input), string(result))
	if err != nil {
		return Record{}, fmt.Errorf("insert history record: %w", err)
	}
	return s.Get(id)
}

// List returns records newest first, optionally filtered by a label search.
func (s *Store) List(query string) ([]Record, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, label, input_json, result_json, status, created_at
		FROM quote_history
		WHERE (? = '' OR label LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history records: %w", err)
	}

	return records, nil
}

// Get returns a single record by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, label, input_json, result_json, status, created_at
		FROM quote_history
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query history record: %w", err)
	}
	return rec, nil
}

// UpdateResult replaces the result snapshot of an existing record. Used when
// a quote is regenerated from its stored input with current engine code.
func (s *Store) UpdateResult(id string, result []byte) error {
	res, err := s.db.Exec(`
		UPDATE quote_history
		SET result_json = ?
		WHERE id = ?
	`, string(result), id)
	if err != nil {
		return fmt.Errorf("update history result: %w", err)
	}
	return requireAffected(res)
}

// UpdateStatus changes the workflow status of an existing record.
func (s *Store) UpdateStatus(id, status string) error {
	res, err := s.db.Exec(`
		UPDATE quote_history
		SET status = ?
		WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("update history status: %w", err)
	}
	return requireAffected(res)
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var input, result string
	if err := scan(&rec.ID, &rec.Label, &input, &result, &rec.Status, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.Input = json.RawMessage(input)
	rec.Result = json.RawMessage(result)
	return rec, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
