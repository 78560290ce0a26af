package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/minetrack/apiserver/types"
)

const userColumns = `id, fullname, email, password, avatar_url, phone, role, position, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Fullname,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.Phone,
		&user.Role,
		&user.Position,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (fullname, email, password, avatar_url, phone, role, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Fullname,
		user.Email,
		user.PasswordHash,
		user.AvatarURL,
		user.Phone,
		user.Role,
		user.Position,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

// UpdateProfile writes only the profile columns present in update and
// returns the resulting row. Role and password are never touched here.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, update types.ProfileUpdate) (types.User, error) {
	var sets []assignment
	if update.Fullname.Set {
		sets = append(sets, assignment{column: "fullname", value: update.Fullname.Value})
	}
	if update.AvatarURL.Set {
		sets = append(sets, assignment{column: "avatar_url", value: update.AvatarURL.Value})
	}
	if update.Phone.Set {
		sets = append(sets, assignment{column: "phone", value: update.Phone.Value})
	}
	if update.Position.Set {
		sets = append(sets, assignment{column: "position", value: update.Position.Value})
	}
	return r.updateColumns(ctx, id, sets)
}

// UpdateRole writes the role and/or position of a user.
func (r *UserRepository) UpdateRole(ctx context.Context, id int, update types.RoleUpdate) (types.User, error) {
	var sets []assignment
	if update.Role != nil {
		sets = append(sets, assignment{column: "role", value: *update.Role})
	}
	if update.Position != nil {
		sets = append(sets, assignment{column: "position", value: *update.Position})
	}
	return r.updateColumns(ctx, id, sets)
}

func (r *UserRepository) UpdateAvatarURL(ctx context.Context, id int, avatarURL string) (types.User, error) {
	return r.updateColumns(ctx, id, []assignment{{column: "avatar_url", value: avatarURL}})
}

type assignment struct {
	column string
	value  any
}

// updateColumns sets the given columns plus updated_at in one statement.
func (r *UserRepository) updateColumns(ctx context.Context, id int, sets []assignment) (types.User, error) {
	sets = append(sets, assignment{column: "updated_at", value: time.Now()})

	clauses := make([]string, len(sets))
	args := make([]any, 0, len(sets)+1)
	for i, set := range sets {
		clauses[i] = set.column + " = $" + strconv.Itoa(i+1)
		args = append(args, set.value)
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(clauses, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	const query = `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now(), id)
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

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
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
