package service

import (
	"context"
	"errors"
	"sync"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/repository"
)

// SettingsRepository defines the persistence operations needed by the
// SettingsService.
type SettingsRepository interface {
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
}

// SettingsService serves per-user presentation settings with optimistic
// updates: the observable state changes immediately and rolls back when
// the persistence write fails.
type SettingsService struct {
	repo SettingsRepository

	mu    sync.RWMutex
	cache map[string]models.Settings
}

// NewSettingsService constructs a SettingsService with the provided
// repository.
func NewSettingsService(repo SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo, cache: make(map[string]models.Settings)}
}

// Get returns the user's settings, creating and persisting defaults on
// first access.
func (s *SettingsService) Get(ctx context.Context, userID string) (models.Settings, error) {
	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	stored, err := s.repo.GetSettings(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		defaults := models.DefaultSettings(userID)
		if err := s.repo.SaveSettings(ctx, defaults); err != nil {
			return models.Settings{}, err
		}
		s.put(userID, defaults)
		return defaults, nil
	}
	if err != nil {
		return models.Settings{}, err
	}

	s.put(userID, *stored)
	return *stored, nil
}

// UpdateSetting applies one field change optimistically: the cached state
// transitions to the new value immediately (pending), the persistence
// write is issued, and on failure the cached state reverts to the prior
// value (rolled back) and the error is returned once. Concurrent writes
// to the same field are last-write-wins.
func (s *SettingsService) UpdateSetting(ctx context.Context, userID, field string, value any) (models.Settings, error) {
	prior, err := s.Get(ctx, userID)
	if err != nil {
		return models.Settings{}, err
	}

	next, err := applyField(prior, field, value)
	if err != nil {
		return prior, err
	}

	s.put(userID, next)
	if err := s.repo.SaveSettings(ctx, next); err != nil {
		s.put(userID, prior)
		return prior, err
	}
	return next, nil
}

func (s *SettingsService) put(userID string, settings models.Settings) {
	s.mu.Lock()
	s.cache[userID] = settings
	s.mu.Unlock()
}

// applyField returns a copy of settings with one field replaced. Unknown
// fields and wrongly-typed values yield ErrInvalid.
func applyField(settings models.Settings, field string, value any) (models.Settings, error) {
	switch field {
	case "theme":
		v, ok := value.(string)
		if !ok || (v != models.ThemeLight && v != models.ThemeDark) {
			return settings, ErrInvalid
		}
		settings.Theme = v
	case "font_size":
		v, ok := value.(string)
		if !ok || v == "" {
			return settings, ErrInvalid
		}
		settings.FontSize = v
	case "high_contrast":
		v, ok := value.(bool)
		if !ok {
			return settings, ErrInvalid
		}
		settings.HighContrast = v
	case "reduced_motion":
		v, ok := value.(bool)
		if !ok {
			return settings, ErrInvalid
		}
		settings.ReducedMotion = v
	default:
		return settings, ErrInvalid
	}
	return settings, nil
}
