package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minetrack/apiserver/types"
)

const financeColumns = `id, date, equipment_name, energy, effectiveness, bcd_total, income, expense, benefit`

// FinanceRepository handles persistence for ledger rows.
type FinanceRepository struct {
	db *sql.DB
}

func NewFinanceRepository(db *sql.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func scanFinance(row rowScanner) (types.Finance, error) {
	var f types.Finance
	err := row.Scan(
		&f.ID,
		&f.Date,
		&f.EquipmentName,
		&f.Energy,
		&f.Effectiveness,
		&f.BcdTotal,
		&f.Income,
		&f.Expense,
		&f.Benefit,
	)
	return f, err
}

func (r *FinanceRepository) List(ctx context.Context) ([]types.Finance, error) {
	const query = `SELECT ` + financeColumns + ` FROM finance ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Finance, 0)
	for rows.Next() {
		item, err := scanFinance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FinanceRepository) Get(ctx context.Context, id int) (types.Finance, error) {
	const query = `SELECT ` + financeColumns + ` FROM finance WHERE id = $1`
	item, err := scanFinance(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Finance{}, ErrNotFound
		}
		return types.Finance{}, err
	}
	return item, nil
}

func (r *FinanceRepository) Create(ctx context.Context, f types.Finance) (types.Finance, error) {
	const query = `
		INSERT INTO finance (date, equipment_name, energy, effectiveness, bcd_total, income, expense, benefit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		f.Date,
		f.EquipmentName,
		f.Energy,
		f.Effectiveness,
		f.BcdTotal,
		f.Income,
		f.Expense,
		f.Benefit,
	).Scan(&f.ID); err != nil {
		return types.Finance{}, err
	}
	return f, nil
}

// Update replaces every column of the row identified by f.ID.
func (r *FinanceRepository) Update(ctx context.Context, f types.Finance) (types.Finance, error) {
	const query = `
		UPDATE finance
		SET date = $1,
			equipment_name = $2,
			energy = $3,
			effectiveness = $4,
			bcd_total = $5,
			income = $6,
			expense = $7,
			benefit = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		f.Date,
		f.EquipmentName,
		f.Energy,
		f.Effectiveness,
		f.BcdTotal,
		f.Income,
		f.Expense,
		f.Benefit,
		f.ID,
	)
	if err != nil {
		return types.Finance{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Finance{}, err
	}
	if affected == 0 {
		return types.Finance{}, ErrNotFound
	}
	return f, nil
}

func (r *FinanceRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM finance WHERE id = $1`
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
