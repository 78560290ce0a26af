package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minetrack/apiserver/types"
)

const equipmentColumns = `id, name, date, asic, fan, core, memory, disk, energy_vt, energy_kvt, hashrate, effectiveness, uptime, hw_error, active`

// EquipmentRepository handles persistence for equipment snapshots.
type EquipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func scanEquipment(row rowScanner) (types.Equipment, error) {
	var e types.Equipment
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Date,
		&e.Asic,
		&e.Fan,
		&e.Core,
		&e.Memory,
		&e.Disk,
		&e.EnergyVt,
		&e.EnergyKvt,
		&e.Hashrate,
		&e.Effectiveness,
		&e.Uptime,
		&e.HWError,
		&e.Active,
	)
	return e, err
}

func (r *EquipmentRepository) List(ctx context.Context) ([]types.Equipment, error) {
	const query = `SELECT ` + equipmentColumns + ` FROM equipment ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Equipment, 0)
	for rows.Next() {
		item, err := scanEquipment(rows)
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

func (r *EquipmentRepository) Get(ctx context.Context, id int) (types.Equipment, error) {
	const query = `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	item, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Equipment{}, ErrNotFound
		}
		return types.Equipment{}, err
	}
	return item, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e types.Equipment) (types.Equipment, error) {
	const query = `
		INSERT INTO equipment (name, date, asic, fan, core, memory, disk, energy_vt, energy_kvt, hashrate, effectiveness, uptime, hw_error, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		e.Name,
		e.Date,
		e.Asic,
		e.Fan,
		e.Core,
		e.Memory,
		e.Disk,
		e.EnergyVt,
		e.EnergyKvt,
		e.Hashrate,
		e.Effectiveness,
		e.Uptime,
		e.HWError,
		e.Active,
	).Scan(&e.ID); err != nil {
		return types.Equipment{}, err
	}
	return e, nil
}

// Update replaces every column of the row identified by e.ID.
func (r *EquipmentRepository) Update(ctx context.Context, e types.Equipment) (types.Equipment, error) {
	const query = `
		UPDATE equipment
		SET name = $1,
			date = $2,
			asic = $3,
			fan = $4,
			core = $5,
			memory = $6,
			disk = $7,
			energy_vt = $8,
			energy_kvt = $9,
			hashrate = $10,
			effectiveness = $11,
			uptime = $12,
			hw_error = $13,
			active = $14
		WHERE id = $15`
	result, err := r.db.ExecContext(
		ctx,
		query,
		e.Name,
		e.Date,
		e.Asic,
		e.Fan,
		e.Core,
		e.Memory,
		e.Disk,
		e.EnergyVt,
		e.EnergyKvt,
		e.Hashrate,
		e.Effectiveness,
		e.Uptime,
		e.HWError,
		e.Active,
		e.ID,
	)
	if err != nil {
		return types.Equipment{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Equipment{}, err
	}
	if affected == 0 {
		return types.Equipment{}, ErrNotFound
	}
	return e, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM equipment WHERE id = $1`
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
