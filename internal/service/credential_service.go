package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderjung3838-wq/roboentrega/internal/adapter/meli"
	"github.com/alexanderjung3838-wq/roboentrega/internal/domain"
	"github.com/alexanderjung3838-wq/roboentrega/internal/repository"
)

// CredentialService owns the credential lifecycle: expiry computation,
// proactive refresh against the marketplace token endpoint, and write-through
// persistence of every successful save.
type CredentialService struct {
	repo   repository.CredentialRepository
	api    meli.API
	skew   time.Duration
	logger *zap.Logger

	// refreshMu serializes refresh so concurrent expired callers trigger a
	// single upstream exchange; the holder re-reads the store before
	// refreshing in case another caller already renewed.
	refreshMu sync.Mutex

	now func() time.Time
}

// NewCredentialService wires the credential lifecycle manager. skew is the
// safety margin subtracted from the declared token lifetime.
func NewCredentialService(repo repository.CredentialRepository, api meli.API, skew time.Duration, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.L()
	}
	return &CredentialService{
		repo:   repo,
		api:    api,
		skew:   skew,
		logger: logger,
		now:    time.Now,
	}
}

// AccessToken returns a valid access token, refreshing first when the stored
// credential is expired. Returns domain.ErrNotAuthorized when no credential
// exists and domain.ErrRefreshFailed when a needed refresh is rejected; the
// stored credential is never mutated on failure.
func (s *CredentialService) AccessToken(ctx context.Context) (string, error) {
	cred, err := s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if cred == nil {
		return "", domain.ErrNotAuthorized
	}
	if !cred.Expired(s.now(), s.skew) {
		return cred.AccessToken, nil
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited on the lock.
	cred, err = s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	if cred == nil {
		return "", domain.ErrNotAuthorized
	}
	if !cred.Expired(s.now(), s.skew) {
		return cred.AccessToken, nil
	}

	s.logger.Info("refreshing access token",
		zap.Time("fresh_until", cred.FreshUntil(s.skew)))

	token, err := s.api.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		s.logger.Error("token refresh rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}

	saved, err := s.Save(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	return saved.AccessToken, nil
}

// Save replaces the stored credential in full with the authorization server's
// response, stamping SavedAt from this process's clock.
func (s *CredentialService) Save(ctx context.Context, token *meli.TokenResponse) (*domain.Credential, error) {
	cred := domain.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.ExpiresIn,
		SavedAt:      s.now().UnixMilli(),
	}
	if err := s.repo.Upsert(ctx, cred); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	s.logger.Info("credential saved",
		zap.Time("fresh_until", cred.FreshUntil(s.skew)))
	return &cred, nil
}
