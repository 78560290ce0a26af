package handlers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/minetrack/apiserver/internal/storage"
	"github.com/minetrack/apiserver/internal/store"
	"github.com/minetrack/apiserver/types"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[int]types.User)}
}

func (m *memUserRepo) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	return user, nil
}

// save overwrites a stored row, keeping its password hash.
func (m *memUserRepo) save(user types.User) error {
	_, err := m.modify(user.ID, func(u *types.User) {
		hash := u.PasswordHash
		*u = user
		u.PasswordHash = hash
	})
	return err
}

func (m *memUserRepo) UpdateProfile(ctx context.Context, id int, update types.ProfileUpdate) (types.User, error) {
	return m.modify(id, func(u *types.User) { update.Apply(u) })
}

func (m *memUserRepo) UpdateRole(ctx context.Context, id int, update types.RoleUpdate) (types.User, error) {
	return m.modify(id, func(u *types.User) {
		if update.Role != nil {
			u.Role = *update.Role
		}
		if update.Position != nil {
			u.Position = update.Position
		}
	})
}

func (m *memUserRepo) UpdateAvatarURL(ctx context.Context, id int, avatarURL string) (types.User, error) {
	return m.modify(id, func(u *types.User) { u.AvatarURL = &avatarURL })
}

func (m *memUserRepo) modify(id int, change func(*types.User)) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	change(&u)
	m.users[id] = u
	return u, nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memTable is an in-memory stand-in for the equipment and finance tables.
type memTable[T any] struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]T
	getID  func(T) int
	setID  func(*T, int)
}

func newMemTable[T any](getID func(T) int, setID func(*T, int)) *memTable[T] {
	return &memTable[T]{rows: make(map[int]T), getID: getID, setID: setID}
}

func (m *memTable[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}
	return out, nil
}

func (m *memTable[T]) Get(ctx context.Context, id int) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	return row, nil
}

func (m *memTable[T]) Create(ctx context.Context, row T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.setID(&row, m.nextID)
	m.rows[m.nextID] = row
	return row, nil
}

func (m *memTable[T]) Update(ctx context.Context, row T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.getID(row)
	if _, ok := m.rows[id]; !ok {
		var zero T
		return zero, store.ErrNotFound
	}
	m.rows[id] = row
	return row, nil
}

func (m *memTable[T]) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memDataLogRepo struct {
	mu      sync.Mutex
	nextID  int
	entries []types.DataLog
}

func (m *memDataLogRepo) List(ctx context.Context) ([]types.DataLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.DataLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *memDataLogRepo) Get(ctx context.Context, id int) (types.DataLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return types.DataLog{}, store.ErrNotFound
}

func (m *memDataLogRepo) Create(ctx context.Context, entry types.DataLog) (types.DataLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *memDataLogRepo) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memDataLogRepo) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.entries))
	m.entries = nil
	return n, nil
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemObjects() *memObjects {
	return &memObjects{objects: make(map[string][]byte)}
}

func (m *memObjects) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memObjects) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memObjects) URL(key string) string {
	return "/static/" + key
}
