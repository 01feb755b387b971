package domain

import (
	"context"
	"fmt"
)

// LanguageRepository interface for user language preferences
type LanguageRepository interface {
	// GetLanguage returns the stored language key, or "" when the user has
	// no preference yet.
	GetLanguage(ctx context.Context, userID int64) (string, error)
	SetLanguage(ctx context.Context, userID int64, language string) error
}

// LanguageService resolves and persists per-user interface languages.
// The preference is written once automatically from the client locale
// hint; later explicit writes override it.
type LanguageService struct {
	prefs  LanguageRepository
	logger Logger
}

// NewLanguageService creates a new LanguageService
func NewLanguageService(prefs LanguageRepository, logger Logger) *LanguageService {
	return &LanguageService{
		prefs:  prefs,
		logger: logger,
	}
}

// Resolve returns the user's stored language, falling back to detected
// when none is stored. On first contact the detected language is saved so
// later lookups are stable even if the client hint changes.
func (s *LanguageService) Resolve(ctx context.Context, userID int64, detected string) string {
	stored, err := s.prefs.GetLanguage(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load language preference", "user_id", userID, "error", err)
		return detected
	}
	if stored != "" {
		return stored
	}
	if err := s.prefs.SetLanguage(ctx, userID, detected); err != nil {
		s.logger.Error("failed to save language preference", "user_id", userID, "error", err)
	}
	return detected
}

// Set explicitly overrides the stored preference.
func (s *LanguageService) Set(ctx context.Context, userID int64, language string) error {
	if err := s.prefs.SetLanguage(ctx, userID, language); err != nil {
		return fmt.Errorf("save language preference for user %d: %w", userID, err)
	}
	return nil
}
