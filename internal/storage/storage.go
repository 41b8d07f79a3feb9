package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const DefaultHistoryLimit = 20

var (
	ErrUserExists  = errors.New("user already exists")
	ErrUnknownUser = errors.New("no such user")
	ErrNotFound    = errors.New("no history entry with such id found")
)

// Entry is one committed calculation in a user's history.
type Entry struct {
	Id         int64     `json:"id"`         //айди
	Expression string    `json:"expression"` //выражение
	Result     string    `json:"result"`     //результат, как показан
	Summary    string    `json:"summary"`    //выражение = результат
	CreatedAt  time.Time `json:"created_at"`
}

// Storage keeps users and their capped calculation history in sqlite.
type Storage struct {
	db    *sql.DB
	limit int //записей на пользователя
}

// Open opens (creating if needed) the database at path. historyLimit <= 0
// means DefaultHistoryLimit.
func Open(path string, historyLimit int) (*Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	s := &Storage{db: db, limit: historyLimit}
	if err = s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) HistoryLimit() int {
	return s.limit
}

func (s *Storage) createTables() error {
	const (
		usersTable = `
	CREATE TABLE IF NOT EXISTS users(
		login TEXT PRIMARY KEY,
		password TEXT NOT NULL
	);`
		historyTable = `
	CREATE TABLE IF NOT EXISTS history(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_login TEXT NOT NULL,
		expression TEXT NOT NULL,
		result TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`
		historyIndex = `CREATE INDEX IF NOT EXISTS history_user ON history(user_login, id);`
	)
	for _, q := range []string{usersTable, historyTable, historyIndex} {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// RegisterUser stores a new login with an already hashed password.
func (s *Storage) RegisterUser(ctx context.Context, login, passwordHash string) error {
	exists, err := s.IsUserExists(ctx, login)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}
	q := "INSERT INTO users (login, password) VALUES ($1, $2)"
	_, err = s.db.ExecContext(ctx, q, login, passwordHash)
	return err
}

// PasswordHash returns the stored hash for login.
func (s *Storage) PasswordHash(ctx context.Context, login string) (string, error) {
	q := "SELECT password FROM users WHERE login=$1"
	var hash string
	err := s.db.QueryRowContext(ctx, q, login).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUnknownUser
	}
	return hash, err
}

func (s *Storage) IsUserExists(ctx context.Context, login string) (bool, error) {
	q := "SELECT COUNT(*) FROM users WHERE login=$1"
	var i int
	if err := s.db.QueryRowContext(ctx, q, login).Scan(&i); err != nil {
		return false, err
	}
	return i != 0, nil
}

// AddEntry appends to the user's history and evicts the oldest entries
// beyond the history limit.
func (s *Storage) AddEntry(ctx context.Context, login string, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Summary == "" {
		e.Summary = e.Expression + " = " + e.Result
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	q := "INSERT INTO history (user_login, expression, result, summary, created_at) VALUES ($1, $2, $3, $4, $5)"
	res, err := tx.ExecContext(ctx, q, login, e.Expression, e.Result, e.Summary, e.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	q = `DELETE FROM history WHERE user_login=$1 AND id NOT IN (
		SELECT id FROM history WHERE user_login=$1 ORDER BY id DESC LIMIT $2)`
	if _, err = tx.ExecContext(ctx, q, login, s.limit); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// Entries lists the user's history, newest first.
func (s *Storage) Entries(ctx context.Context, login string) ([]Entry, error) {
	q := "SELECT id, expression, result, summary, created_at FROM history WHERE user_login=$1 ORDER BY id DESC"
	rows, err := s.db.QueryContext(ctx, q, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]Entry, 0, s.limit)
	for rows.Next() {
		var tmp Entry
		if err = rows.Scan(&tmp.Id, &tmp.Expression, &tmp.Result, &tmp.Summary, &tmp.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, tmp)
	}
	return res, rows.Err()
}

func (s *Storage) EntryById(ctx context.Context, login string, id int64) (Entry, error) {
	q := "SELECT id, expression, result, summary, created_at FROM history WHERE user_login=$1 AND id=$2"
	var tmp Entry
	err := s.db.QueryRowContext(ctx, q, login, id).
		Scan(&tmp.Id, &tmp.Expression, &tmp.Result, &tmp.Summary, &tmp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return tmp, err
}

func (s *Storage) ClearEntries(ctx context.Context, login string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE user_login=$1", login)
	return err
}
