package watchlist

import (
	"context"
	"fmt"

	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/pkg/logger"
)

// Service validates codes and wraps a Store
// ⭐ SSOT: 관심종목 변경은 이 서비스를 통해서만
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a watchlist service
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// List returns owner's codes in insertion order
func (s *Service) List(ctx context.Context, owner string) ([]string, error) {
	codes, err := s.store.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	return codes, nil
}

// Set returns owner's codes as a Set for the filter pipeline
func (s *Service) Set(ctx context.Context, owner string) (Set, error) {
	codes, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	return NewSet(codes...), nil
}

// Add tracks code for owner
func (s *Service) Add(ctx context.Context, owner, code string) (string, error) {
	normalized, ok := contracts.NormalizeStockCode(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	if err := s.store.Add(ctx, owner, normalized); err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"owner":      owner,
		"stock_code": normalized,
	}).Debug("Watchlist add")

	return normalized, nil
}

// Remove untracks code for owner
func (s *Service) Remove(ctx context.Context, owner, code string) (string, error) {
	normalized, ok := contracts.NormalizeStockCode(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	if err := s.store.Remove(ctx, owner, normalized); err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"owner":      owner,
		"stock_code": normalized,
	}).Debug("Watchlist remove")

	return normalized, nil
}

// Toggle adds code when absent and removes it when present.
// It returns whether the code is tracked afterwards.
func (s *Service) Toggle(ctx context.Context, owner, code string) (bool, error) {
	normalized, ok := contracts.NormalizeStockCode(code)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	set, err := s.Set(ctx, owner)
	if err != nil {
		return false, err
	}

	if set.Has(normalized) {
		_, err = s.Remove(ctx, owner, normalized)
		return false, err
	}

	_, err = s.Add(ctx, owner, normalized)
	return err == nil, err
}
