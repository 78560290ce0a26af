package services

import (
	"context"
	"strings"

	"github.com/minetrack/apiserver/types"
)

// EquipmentRepository defines persistence operations for equipment snapshots.
type EquipmentRepository interface {
	List(ctx context.Context) ([]types.Equipment, error)
	Get(ctx context.Context, id int) (types.Equipment, error)
	Create(ctx context.Context, equipment types.Equipment) (types.Equipment, error)
	Update(ctx context.Context, equipment types.Equipment) (types.Equipment, error)
	Delete(ctx context.Context, id int) error
}

// EquipmentService encapsulates equipment use-cases.
type EquipmentService struct {
	repo EquipmentRepository
}

func NewEquipmentService(repo EquipmentRepository) *EquipmentService {
	return &EquipmentService{repo: repo}
}

func (s *EquipmentService) List(ctx context.Context) ([]types.Equipment, error) {
	return s.repo.List(ctx)
}

func (s *EquipmentService) Get(ctx context.Context, id int) (types.Equipment, error) {
	return s.repo.Get(ctx, id)
}

func (s *EquipmentService) Create(ctx context.Context, equipment types.Equipment) (types.Equipment, error) {
	if err := validateEquipment(&equipment); err != nil {
		return types.Equipment{}, err
	}
	equipment.ID = 0
	return s.repo.Create(ctx, equipment)
}

// Update replaces every field of the record with id.
func (s *EquipmentService) Update(ctx context.Context, id int, equipment types.Equipment) (types.Equipment, error) {
	if err := validateEquipment(&equipment); err != nil {
		return types.Equipment{}, err
	}
	equipment.ID = id
	return s.repo.Update(ctx, equipment)
}

func (s *EquipmentService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func validateEquipment(equipment *types.Equipment) error {
	equipment.Name = strings.TrimSpace(equipment.Name)
	if equipment.Name == "" {
		return validationError("name is required")
	}
	if equipment.Date.IsZero() {
		return validationError("date is required")
	}
	return nil
}
