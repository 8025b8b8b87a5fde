package api

import (
	"context"
	"errors"

	"github.com/elimS2/prompt-manager/models"
)

type keyType string

const userKey keyType = "user"

// ctxWithUser adds the authenticated user to the context
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ctxGetUser retrieves the authenticated user from the context
func ctxGetUser(ctx context.Context) (*models.User, error) {
	value := ctx.Value(userKey)
	if value == nil {
		return nil, errors.New("user not found in context")
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, errors.New("context user has unexpected type")
	}
	return user, nil
}
