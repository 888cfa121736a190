package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/confidant/internal/common"
	"github.com/dmitrijs2005/confidant/internal/cryptox"
	"github.com/dmitrijs2005/confidant/internal/logging"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
)

type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With("module", "users"),
	}
}

// Register creates an account with a hashed password and the given initial
// conversation. A taken username yields common.ErrDuplicateUser and leaves
// the stored record unchanged.
func (s *Service) Register(ctx context.Context, username, password string, initial chat.Conversation) (*Account, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &Account{
		Username:     username,
		PasswordHash: hash,
		History:      chat.Normalize(initial),
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, common.ErrDuplicateUser
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "registered", "username", username)
	return account, nil
}

// Authenticate verifies the password against the stored hash. An absent
// username is indistinguishable from a wrong password: both yield
// common.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, err := s.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := cryptox.VerifyPassword(account.PasswordHash, password)
	if err != nil || !ok {
		return nil, common.ErrInvalidCredentials
	}

	return account, nil
}

// History returns the account's stored conversation, defaulting to a fresh
// one if the record carries none.
func (s *Service) History(ctx context.Context, username string) (chat.Conversation, error) {
	account, err := s.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownUser
		}
		return nil, common.ErrorInternal
	}
	return chat.Normalize(account.History), nil
}

// UpdateHistory replaces the account's history and persists the whole
// record. An absent username yields common.ErrUnknownUser.
func (s *Service) UpdateHistory(ctx context.Context, username string, conv chat.Conversation) error {
	account, err := s.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnknownUser
		}
		return common.ErrorInternal
	}

	account.History = chat.Normalize(conv)
	if err := s.repo.Update(ctx, account); err != nil {
		s.logger.Error(ctx, "error updating history", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// ResetHistory puts the account back to a conversation holding only the
// system prompt.
func (s *Service) ResetHistory(ctx context.Context, username string) error {
	return s.UpdateHistory(ctx, username, chat.NewConversation())
}
