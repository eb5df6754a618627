package services

import (
	"context"

	"github.com/vytor/neurobank/internal/errors"
	"github.com/vytor/neurobank/internal/logger"
	"github.com/vytor/neurobank/internal/repository"
)

// requireUser returns NOT_FOUND when userID has no account.
func requireUser(ctx context.Context, users repository.UserRepository, userID string) error {
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load user: %v", err)
		return errors.NewInternalError(err)
	}
	if u == nil {
		return errors.NewNotFoundError("user", userID)
	}
	return nil
}

// internal wraps storage failures, leaving app errors untouched.
func internal(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewInternalError(err)
}
