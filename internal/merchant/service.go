package merchant

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/cardora/giftcard-market/internal/upstream"
	"github.com/cardora/giftcard-market/pkg/cache"
	"github.com/cardora/giftcard-market/pkg/common"
	"github.com/cardora/giftcard-market/pkg/logger"
	"github.com/cardora/giftcard-market/pkg/models"
)

// Service manages merchant API profiles and saved payment methods. The
// authoritative copies live upstream; redis keeps a per-user cached profile
// with a staleness window.
type Service struct {
	api   UpstreamAPI
	cache Cache

	profileTTL   time.Duration
	staleAfter   time.Duration
	reconcileNow func(fn func()) // swapped out by tests to run inline
}

// NewService creates a merchant service. profileTTL bounds how long a cached
// profile is kept at all; staleAfter is the window after which a cached copy
// is still served but reconciled against upstream in the background.
func NewService(api UpstreamAPI, profileCache Cache, profileTTL, staleAfter time.Duration) *Service {
	if profileTTL <= 0 {
		profileTTL = cache.TTL.VeryLong()
	}
	if staleAfter <= 0 || staleAfter > profileTTL {
		staleAfter = cache.TTL.Short()
	}
	return &Service{
		api:          api,
		cache:        profileCache,
		profileTTL:   profileTTL,
		staleAfter:   staleAfter,
		reconcileNow: func(fn func()) { go fn() },
	}
}

// GetProfile returns the caller's merchant profile. A fresh cached copy is
// served as is; a stale one is served immediately and reconciled against
// upstream in the background. Reconciliation failures are logged and never
// surfaced, the cached copy stays valid until its TTL runs out.
func (s *Service) GetProfile(ctx context.Context, session models.Session) (*ProfileView, error) {
	key := cache.Keys.MerchantProfile(session.UserID.String())

	var cached cachedProfile
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		stale := time.Since(cached.FetchedAt) > s.staleAfter
		if stale {
			s.reconcileNow(func() { s.reconcileProfile(session, cached.Version) })
		}
		return newProfileView(cached.Profile, stale), nil
	}

	profile, err := s.api.GetProfile(ctx, session)
	if err != nil {
		return nil, mapUpstreamError(err, "merchant profile not found")
	}

	s.storeProfile(ctx, session, profile, 1)
	return newProfileView(profile, false), nil
}

// CreateProfile provisions a merchant API profile upstream and returns the
// full credential once.
func (s *Service) CreateProfile(ctx context.Context, session models.Session, chargeType models.ChargeType) (*ProfileSecret, error) {
	profile, err := s.api.CreateProfile(ctx, session, upstream.CreateProfileRequest{ChargeType: chargeType})
	if err != nil {
		return nil, mapUpstreamError(err, "merchant profile could not be created")
	}

	s.replaceProfile(ctx, session, profile)
	return &ProfileSecret{
		APIKey:     profile.APIKey,
		ChargeType: profile.ChargeType,
		IsActive:   profile.IsActive,
	}, nil
}

// RegenerateToken rotates the merchant credential upstream, invalidates the
// cached profile and returns the new credential once.
func (s *Service) RegenerateToken(ctx context.Context, session models.Session) (*ProfileSecret, error) {
	profile, err := s.api.RegenerateToken(ctx, session)
	if err != nil {
		return nil, mapUpstreamError(err, "credential could not be regenerated")
	}

	s.replaceProfile(ctx, session, profile)
	return &ProfileSecret{
		APIKey:     profile.APIKey,
		ChargeType: profile.ChargeType,
		IsActive:   profile.IsActive,
	}, nil
}

// ListSavedCards returns the caller's tokenized payment methods, cached
// briefly because the list changes rarely within a checkout session.
func (s *Service) ListSavedCards(ctx context.Context, session models.Session) ([]models.SavedCard, error) {
	key := cache.Keys.SavedCards(session.UserID.String())

	var cards []models.SavedCard
	err := s.cache.GetOrSet(ctx, key, cache.TTL.Short(), &cards, func() (interface{}, error) {
		return s.api.ListSavedCards(ctx, session)
	})
	if err != nil {
		return nil, mapUpstreamError(err, "saved cards could not be loaded")
	}
	return cards, nil
}

// AddCard proxies the upstream tokenized add-card flow and invalidates the
// cached card list.
func (s *Service) AddCard(ctx context.Context, session models.Session, token string, setDefault bool) (models.SavedCard, error) {
	card, err := s.api.AddCard(ctx, session, upstream.AddCardRequest{Token: token, SetDefault: setDefault})
	if err != nil {
		return models.SavedCard{}, mapUpstreamError(err, "card could not be added")
	}

	if err := s.cache.Delete(ctx, cache.Keys.SavedCards(session.UserID.String())); err != nil {
		logger.WarnContext(ctx, "failed to invalidate saved card cache",
			zap.String("user_id", session.UserID.String()),
			zap.Error(err),
		)
	}
	return card, nil
}

// reconcileProfile refetches a stale profile in the background. It only
// overwrites the cache when the stored version still matches the one the
// stale read saw, so a concurrent regenerate wins.
func (s *Service) reconcileProfile(session models.Session, sawVersion int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := s.api.GetProfile(ctx, session)
	if err != nil {
		logger.Get().Warn("merchant profile reconcile failed",
			zap.String("user_id", session.UserID.String()),
			zap.Error(err),
		)
		return
	}

	key := cache.Keys.MerchantProfile(session.UserID.String())
	var current cachedProfile
	if err := s.cache.Get(ctx, key, &current); err == nil && current.Version != sawVersion {
		return
	}

	s.storeProfile(ctx, session, profile, sawVersion)
}

// replaceProfile overwrites the cached profile after a credential change,
// bumping the version stamp past whatever is stored.
func (s *Service) replaceProfile(ctx context.Context, session models.Session, profile models.Profile) {
	key := cache.Keys.MerchantProfile(session.UserID.String())

	version := 1
	var current cachedProfile
	if err := s.cache.Get(ctx, key, &current); err == nil {
		version = current.Version + 1
	}

	s.storeProfile(ctx, session, profile, version)
}

func (s *Service) storeProfile(ctx context.Context, session models.Session, profile models.Profile, version int) {
	key := cache.Keys.MerchantProfile(session.UserID.String())
	entry := cachedProfile{Profile: profile, Version: version, FetchedAt: time.Now()}
	if err := s.cache.Set(ctx, key, entry, s.profileTTL); err != nil {
		logger.WarnContext(ctx, "failed to cache merchant profile",
			zap.String("user_id", session.UserID.String()),
			zap.Error(err),
		)
	}
}

func mapUpstreamError(err error, fallback string) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 404 {
			return common.NewNotFoundError(fallback, err)
		}
		return common.NewUpstreamError(apiErr.Message, err)
	}
	return common.NewUpstreamError(fallback, err)
}
