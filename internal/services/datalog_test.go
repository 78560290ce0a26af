package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/minetrack/apiserver/internal/mq"
	"github.com/minetrack/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataLogService_CreateSnapshotsActor(t *testing.T) {
	repo := &fakeDataLogRepo{}
	svc := NewDataLogService(repo, nil, nil)
	actor := types.User{ID: 7, Fullname: "Anna Smirnova", Role: types.RoleAdmin}

	entry, err := svc.Create(context.Background(), actor, DataLogEntry{
		Action:    "upload",
		Parameter: map[string]any{"rows": float64(12)},
	})
	require.NoError(t, err)

	actor.Role = types.RoleUser
	actor.Fullname = "Renamed"

	stored, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.UserID)
	assert.Equal(t, "Anna Smirnova", stored.UserFullname)
	assert.Equal(t, types.RoleAdmin, stored.UserRole)
	assert.Equal(t, map[string]any{"rows": float64(12)}, stored.Parameter)
}

func TestDataLogService_CreateDefaults(t *testing.T) {
	svc := NewDataLogService(&fakeDataLogRepo{}, nil, nil)

	entry, err := svc.Create(context.Background(), types.User{ID: 1, Role: types.RoleUser}, DataLogEntry{Action: " export "})
	require.NoError(t, err)

	assert.Equal(t, "export", entry.Action)
	assert.NotNil(t, entry.Parameter)
	assert.Empty(t, entry.Parameter)
	assert.Nil(t, entry.FileName)
}

func TestDataLogService_CreateRequiresAction(t *testing.T) {
	repo := &fakeDataLogRepo{}
	svc := NewDataLogService(repo, nil, nil)

	_, err := svc.Create(context.Background(), types.User{ID: 1}, DataLogEntry{})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.entries)
}

func TestDataLogService_CreatePublishes(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewDataLogService(&fakeDataLogRepo{}, publisher, nil)
	fileName := "report.xlsx"

	entry, err := svc.Create(context.Background(), types.User{ID: 3, Fullname: "Oleg", Role: types.RoleUser}, DataLogEntry{
		Action:   "import",
		FileName: &fileName,
	})
	require.NoError(t, err)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, DataLogChannel, publisher.channels[0])
	assert.Equal(t, "application/json", publisher.attrs[0][mq.AttrContentType])
	assert.Equal(t, "import", publisher.attrs[0]["action"])
	assert.Equal(t, "3", publisher.attrs[0]["user_id"])

	var published types.DataLog
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &published))
	assert.Equal(t, entry.ID, published.ID)
	assert.Equal(t, "Oleg", published.UserFullname)
}

func TestDataLogService_PublishFailureDoesNotFailCreate(t *testing.T) {
	repo := &fakeDataLogRepo{}
	svc := NewDataLogService(repo, &fakePublisher{err: errBoom}, nil)

	_, err := svc.Create(context.Background(), types.User{ID: 1}, DataLogEntry{Action: "upload"})

	require.NoError(t, err)
	assert.Len(t, repo.entries, 1)
}

func TestDataLogService_RepositoryFailureSkipsPublish(t *testing.T) {
	publisher := &fakePublisher{}
	svc := NewDataLogService(&fakeDataLogRepo{err: errBoom}, publisher, nil)

	_, err := svc.Create(context.Background(), types.User{ID: 1}, DataLogEntry{Action: "upload"})

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, publisher.payloads)
}

func TestDataLogService_DeleteAll(t *testing.T) {
	repo := &fakeDataLogRepo{}
	svc := NewDataLogService(repo, nil, nil)
	for _, action := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), types.User{ID: 1}, DataLogEntry{Action: action})
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Action)

	n, err := svc.DeleteAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	list, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}
