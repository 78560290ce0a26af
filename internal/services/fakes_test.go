package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/minetrack/apiserver/internal/storage"
	"github.com/minetrack/apiserver/internal/store"
	"github.com/minetrack/apiserver/types"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User

	updatePasswordCalls int

	// beforeProfileWrite runs ahead of UpdateProfile, standing in for a
	// concurrent writer.
	beforeProfileWrite func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User)}
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id int, update types.ProfileUpdate) (types.User, error) {
	if f.beforeProfileWrite != nil {
		f.beforeProfileWrite()
	}
	return f.modify(id, func(u *types.User) { update.Apply(u) })
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int, update types.RoleUpdate) (types.User, error) {
	return f.modify(id, func(u *types.User) {
		if update.Role != nil {
			u.Role = *update.Role
		}
		if update.Position != nil {
			u.Position = update.Position
		}
	})
}

func (f *fakeUserRepo) UpdateAvatarURL(ctx context.Context, id int, avatarURL string) (types.User, error) {
	return f.modify(id, func(u *types.User) { u.AvatarURL = &avatarURL })
}

func (f *fakeUserRepo) modify(id int, change func(*types.User)) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	change(&u)
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatePasswordCalls++
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeAvatarStorage struct {
	objects     map[string][]byte
	contentType map[string]string
	putErr      error
	deleteErr   error
}

func newFakeAvatarStorage() *fakeAvatarStorage {
	return &fakeAvatarStorage{objects: make(map[string][]byte), contentType: make(map[string]string)}
}

func (f *fakeAvatarStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.contentType[key] = contentType
	return nil
}

func (f *fakeAvatarStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeAvatarStorage) URL(key string) string {
	return "/static/" + key
}

type fakeDataLogRepo struct {
	nextID  int
	entries []types.DataLog
	err     error
}

func (f *fakeDataLogRepo) List(ctx context.Context) ([]types.DataLog, error) {
	out := make([]types.DataLog, 0, len(f.entries))
	for i := len(f.entries) - 1; i >= 0; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

func (f *fakeDataLogRepo) Get(ctx context.Context, id int) (types.DataLog, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return types.DataLog{}, store.ErrNotFound
}

func (f *fakeDataLogRepo) Create(ctx context.Context, entry types.DataLog) (types.DataLog, error) {
	if f.err != nil {
		return types.DataLog{}, f.err
	}
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeDataLogRepo) Delete(ctx context.Context, id int) error {
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeDataLogRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(f.entries))
	f.entries = nil
	return n, nil
}

type fakePublisher struct {
	channels []string
	payloads [][]byte
	attrs    []map[string]string
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, data)
	f.attrs = append(f.attrs, attrs)
	return "msg-1", nil
}

type fakeEquipmentRepo struct {
	items map[int]types.Equipment
}

func (f *fakeEquipmentRepo) List(ctx context.Context) ([]types.Equipment, error) {
	out := make([]types.Equipment, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeEquipmentRepo) Get(ctx context.Context, id int) (types.Equipment, error) {
	item, ok := f.items[id]
	if !ok {
		return types.Equipment{}, store.ErrNotFound
	}
	return item, nil
}

func (f *fakeEquipmentRepo) Create(ctx context.Context, e types.Equipment) (types.Equipment, error) {
	e.ID = len(f.items) + 1
	f.items[e.ID] = e
	return e, nil
}

func (f *fakeEquipmentRepo) Update(ctx context.Context, e types.Equipment) (types.Equipment, error) {
	if _, ok := f.items[e.ID]; !ok {
		return types.Equipment{}, store.ErrNotFound
	}
	f.items[e.ID] = e
	return e, nil
}

func (f *fakeEquipmentRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

var errBoom = errors.New("boom")
