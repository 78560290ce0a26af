package services

import (
	"context"
	"strings"

	"github.com/minetrack/apiserver/types"
)

// FinanceRepository defines persistence operations for ledger rows.
type FinanceRepository interface {
	List(ctx context.Context) ([]types.Finance, error)
	Get(ctx context.Context, id int) (types.Finance, error)
	Create(ctx context.Context, finance types.Finance) (types.Finance, error)
	Update(ctx context.Context, finance types.Finance) (types.Finance, error)
	Delete(ctx context.Context, id int) error
}

// FinanceService encapsulates ledger use-cases.
type FinanceService struct {
	repo FinanceRepository
}

func NewFinanceService(repo FinanceRepository) *FinanceService {
	return &FinanceService{repo: repo}
}

func (s *FinanceService) List(ctx context.Context) ([]types.Finance, error) {
	return s.repo.List(ctx)
}

func (s *FinanceService) Get(ctx context.Context, id int) (types.Finance, error) {
	return s.repo.Get(ctx, id)
}

func (s *FinanceService) Create(ctx context.Context, finance types.Finance) (types.Finance, error) {
	if err := validateFinance(&finance); err != nil {
		return types.Finance{}, err
	}
	finance.ID = 0
	return s.repo.Create(ctx, finance)
}

// Update replaces every field of the record with id.
func (s *FinanceService) Update(ctx context.Context, id int, finance types.Finance) (types.Finance, error) {
	if err := validateFinance(&finance); err != nil {
		return types.Finance{}, err
	}
	finance.ID = id
	return s.repo.Update(ctx, finance)
}

func (s *FinanceService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func validateFinance(finance *types.Finance) error {
	finance.EquipmentName = strings.TrimSpace(finance.EquipmentName)
	if finance.EquipmentName == "" {
		return validationError("equipment_name is required")
	}
	if finance.Date.IsZero() {
		return validationError("date is required")
	}
	return nil
}
