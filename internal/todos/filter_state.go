package todos

import (
	"sync"

	"github.com/nhle/tasknest/internal/apperrors"
	"github.com/nhle/tasknest/internal/model"
)

// FilterState holds the active category filter and sort option.
type FilterState struct {
	mu     sync.RWMutex
	filter model.CategoryFilter
	sortBy model.SortOption
	onSort []func(model.SortOption)
}

// NewFilterState starts unfiltered with the given sort option. An invalid
// option falls back to created_at.
func NewFilterState(sortBy model.SortOption) *FilterState {
	if !sortBy.Valid() {
		sortBy = model.SortByCreatedAt
	}
	return &FilterState{sortBy: sortBy}
}

// Filter returns the active filter.
func (s *FilterState) Filter() model.CategoryFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SortBy returns the active sort option.
func (s *FilterState) SortBy() model.SortOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy
}

// SetFilter replaces the filter and reports whether it changed. Fetching
// is left to the Repository.
func (s *FilterState) SetFilter(f model.CategoryFilter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Equal(f) {
		return false
	}
	s.filter = f
	return true
}

// SetSortBy replaces the sort option.
func (s *FilterState) SetSortBy(opt model.SortOption) error {
	if !opt.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidSortOption,
			"unknown sort option "+string(opt))
	}

	s.mu.Lock()
	if s.sortBy == opt {
		s.mu.Unlock()
		return nil
	}
	s.sortBy = opt
	listeners := append([]func(model.SortOption){}, s.onSort...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(opt)
	}
	return nil
}

// OnSortChange registers fn to run after the sort option changes.
func (s *FilterState) OnSortChange(fn func(model.SortOption)) {
	s.mu.Lock()
	s.onSort = append(s.onSort, fn)
	s.mu.Unlock()
}
