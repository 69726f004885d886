package loginsession

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"github.com/pkg/errors"
)

// Session is the identity provider's record of a signed in browser session.
type Session struct {
	// Core identity
	Username string `json:"username"`

	// Tokens (refresh is essential, access and id are convenience)
	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// Session management
	ExpiresAt time.Time `json:"expires_at"` // when the ID/access tokens expire
	CreatedAt time.Time `json:"created_at"`
}

type Repo interface {
	Upsert(ctx context.Context, sessionID string, session Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// Exists reports whether repo holds a session for sessionID.
func Exists(ctx context.Context, repo Repo, sessionID string) (bool, error) {
	_, err := repo.Get(ctx, sessionID)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "[loginsession.Exists] Get")
	}
	return true, nil
}

// Move re-keys the session stored under fromID to toID. A missing session is not an error.
func Move(ctx context.Context, repo Repo, fromID, toID string) error {
	session, err := repo.Get(ctx, fromID)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[loginsession.Move] Get")
	}
	if err := repo.Upsert(ctx, toID, session); err != nil {
		return errors.Wrap(err, "[loginsession.Move] Upsert")
	}
	if err := repo.Delete(ctx, fromID); err != nil {
		return errors.Wrap(err, "[loginsession.Move] Delete")
	}
	return nil
}
