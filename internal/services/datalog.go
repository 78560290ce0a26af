package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/mq"
	"github.com/minetrack/apiserver/types"
)

// DataLogChannel is the broker channel stored log entries are published on.
const DataLogChannel = "datalogs"

// DataLogRepository defines persistence operations for audit log entries.
type DataLogRepository interface {
	List(ctx context.Context) ([]types.DataLog, error)
	Get(ctx context.Context, id int) (types.DataLog, error)
	Create(ctx context.Context, entry types.DataLog) (types.DataLog, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Publisher sends a payload to a broker channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// DataLogEntry is the caller-supplied part of a log entry.
type DataLogEntry struct {
	Action    string         `json:"action"`
	Parameter map[string]any `json:"parameter"`
	FileName  *string        `json:"file_name"`
}

// DataLogService encapsulates audit log use-cases.
type DataLogService struct {
	repo      DataLogRepository
	publisher Publisher
	log       logging.Logger
}

// NewDataLogService constructs a DataLogService. publisher may be nil to
// disable event publication.
func NewDataLogService(repo DataLogRepository, publisher Publisher, log logging.Logger) *DataLogService {
	if log == nil {
		log = logging.Nop()
	}
	return &DataLogService{repo: repo, publisher: publisher, log: log}
}

// List returns all entries, newest first.
func (s *DataLogService) List(ctx context.Context) ([]types.DataLog, error) {
	return s.repo.List(ctx)
}

func (s *DataLogService) Get(ctx context.Context, id int) (types.DataLog, error) {
	return s.repo.Get(ctx, id)
}

// Create records an action by actor. The actor's current fullname and role
// are copied into the entry.
func (s *DataLogService) Create(ctx context.Context, actor types.User, entry DataLogEntry) (types.DataLog, error) {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return types.DataLog{}, validationError("action is required")
	}
	parameter := entry.Parameter
	if parameter == nil {
		parameter = map[string]any{}
	}

	created, err := s.repo.Create(ctx, types.DataLog{
		UserID:       actor.ID,
		UserFullname: actor.Fullname,
		UserRole:     actor.Role,
		Action:       action,
		Parameter:    parameter,
		FileName:     entry.FileName,
	})
	if err != nil {
		return types.DataLog{}, err
	}

	s.publish(ctx, created)
	return created, nil
}

func (s *DataLogService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// DeleteAll removes every entry and returns the number removed.
func (s *DataLogService) DeleteAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}

func (s *DataLogService) publish(ctx context.Context, entry types.DataLog) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.log.Warn(ctx, "encode data log event", "log_id", entry.ID, "error", err)
		return
	}
	attrs := map[string]string{
		mq.AttrContentType: "application/json",
		"action":           entry.Action,
		"user_id":          strconv.Itoa(entry.UserID),
	}
	if _, err := s.publisher.Publish(ctx, DataLogChannel, data, attrs); err != nil {
		s.log.Warn(ctx, "publish data log event", "log_id", entry.ID, "error", err)
	}
}
