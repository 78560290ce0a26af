package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/minetrack/apiserver/types"
)

const dataLogColumns = `id, user_id, user_fullname, user_role, action, parameter, file_name, created_at`

// DataLogRepository handles persistence for audit log entries.
type DataLogRepository struct {
	db *sql.DB
}

func NewDataLogRepository(db *sql.DB) *DataLogRepository {
	return &DataLogRepository{db: db}
}

func scanDataLog(row rowScanner) (types.DataLog, error) {
	var entry types.DataLog
	var parameterJSON []byte
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.UserFullname,
		&entry.UserRole,
		&entry.Action,
		&parameterJSON,
		&entry.FileName,
		&entry.CreatedAt,
	); err != nil {
		return types.DataLog{}, err
	}
	if len(parameterJSON) > 0 {
		if err := json.Unmarshal(parameterJSON, &entry.Parameter); err != nil {
			return types.DataLog{}, fmt.Errorf("decode parameter of log %d: %w", entry.ID, err)
		}
	}
	return entry, nil
}

// List returns every entry, newest first.
func (r *DataLogRepository) List(ctx context.Context) ([]types.DataLog, error) {
	const query = `SELECT ` + dataLogColumns + ` FROM data_logs ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.DataLog, 0)
	for rows.Next() {
		entry, err := scanDataLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *DataLogRepository) Get(ctx context.Context, id int) (types.DataLog, error) {
	const query = `SELECT ` + dataLogColumns + ` FROM data_logs WHERE id = $1`
	entry, err := scanDataLog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DataLog{}, ErrNotFound
		}
		return types.DataLog{}, err
	}
	return entry, nil
}

// Create inserts entry; created_at is assigned by the database.
func (r *DataLogRepository) Create(ctx context.Context, entry types.DataLog) (types.DataLog, error) {
	if entry.Parameter == nil {
		entry.Parameter = map[string]any{}
	}
	parameterJSON, err := json.Marshal(entry.Parameter)
	if err != nil {
		return types.DataLog{}, err
	}

	const query = `
		INSERT INTO data_logs (user_id, user_fullname, user_role, action, parameter, file_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.UserID,
		entry.UserFullname,
		entry.UserRole,
		entry.Action,
		parameterJSON,
		entry.FileName,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return types.DataLog{}, err
	}
	return entry, nil
}

func (r *DataLogRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM data_logs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll clears the table and reports how many rows were removed.
func (r *DataLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	const query = `DELETE FROM data_logs`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
