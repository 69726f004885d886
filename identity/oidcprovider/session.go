package oidcprovider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/mentor-portal/identity"
	apperrors "github.com/jrsteele09/mentor-portal/internal/errors"
	"github.com/jrsteele09/mentor-portal/loginsession"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type provider struct {
	svc       *Service
	sessionID string
}

func (p *provider) SignIn(ctx context.Context, username, password string) (*identity.Identity, error) {
	conf, verifier, err := p.svc.discover(ctx)
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Identity provider unavailable", err)
	}

	tok, err := conf.PasswordCredentialsToken(p.svc.clientContext(ctx), username, password)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	rawIDToken, _ := tok.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, identity.NewError(identity.CodeServiceUnavailable, "No id_token in token response")
	}
	idToken, err := verifier.Verify(p.svc.clientContext(ctx), rawIDToken)
	if err != nil {
		return nil, identity.WrapError(identity.CodeNotAuthorized, "ID token rejected", err)
	}
	id, err := identityFromToken(idToken)
	if err != nil {
		return nil, identity.WrapError(identity.CodeNotAuthorized, "ID token claims rejected", err)
	}

	if err := p.svc.sessions.Upsert(ctx, p.sessionID, loginsession.Session{
		Username:     id.Username,
		IDToken:      rawIDToken,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    idToken.Expiry,
		CreatedAt:    p.svc.nowTime(),
	}); err != nil {
		return nil, errors.Wrap(err, "[oidcprovider.SignIn] sessions.Upsert")
	}
	return id, nil
}

func (p *provider) SignOut(ctx context.Context) error {
	record, err := p.svc.sessions.Get(ctx, p.sessionID)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[oidcprovider.SignOut] sessions.Get")
	}

	if p.svc.cfg.RevocationURL != "" {
		if record.RefreshToken != "" {
			p.revokeToken(ctx, record.RefreshToken, "refresh_token")
		}
		if record.AccessToken != "" {
			p.revokeToken(ctx, record.AccessToken, "access_token")
		}
	}

	if err := p.svc.sessions.Delete(ctx, p.sessionID); err != nil {
		return errors.Wrap(err, "[oidcprovider.SignOut] sessions.Delete")
	}
	return nil
}

// revokeToken is best effort; a failed revocation does not block sign-out
func (p *provider) revokeToken(ctx context.Context, token, tokenTypeHint string) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", tokenTypeHint)
	form.Set("client_id", p.svc.cfg.ClientID)
	form.Set("client_secret", p.svc.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.svc.cfg.RevocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		log.Err(err).Str("token_type", tokenTypeHint).Msg("Failed to build revocation request")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.svc.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("token_type", tokenTypeHint).Msg("Failed to revoke token")
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		log.Warn().Int("status", resp.StatusCode).Str("token_type", tokenTypeHint).Msg("Token revocation rejected")
	}
}

func (p *provider) CurrentSession(ctx context.Context, bypassCache bool) (*identity.Session, error) {
	record, err := p.svc.sessions.Get(ctx, p.sessionID)
	if apperrors.Is(err, apperrors.ErrSessionNotFound) {
		return nil, identity.ErrNotAuthenticated
	}
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Failed to load session", err)
	}

	if !bypassCache && p.svc.nowTime().Before(record.ExpiresAt) {
		return toSession(record), nil
	}
	return p.refresh(ctx, record)
}

func (p *provider) CurrentIdentity(ctx context.Context) (*identity.Identity, error) {
	sess, err := p.CurrentSession(ctx, false)
	if err != nil {
		return nil, err
	}
	_, verifier, err := p.svc.discover(ctx)
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Identity provider unavailable", err)
	}
	idToken, err := verifier.Verify(p.svc.clientContext(ctx), sess.IDToken)
	if err != nil {
		return nil, identity.WrapError(identity.CodeNotAuthenticated, "Session token rejected", err)
	}
	return identityFromToken(idToken)
}

// refresh exchanges the stored refresh token for a new token set
func (p *provider) refresh(ctx context.Context, record loginsession.Session) (*identity.Session, error) {
	if record.RefreshToken == "" {
		_ = p.svc.sessions.Delete(ctx, p.sessionID)
		return nil, identity.WrapError(identity.CodeNotAuthenticated, "Session has no refresh token", apperrors.ErrSessionExpired)
	}

	conf, verifier, err := p.svc.discover(ctx)
	if err != nil {
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Identity provider unavailable", err)
	}

	tok, err := conf.TokenSource(p.svc.clientContext(ctx), &oauth2.Token{RefreshToken: record.RefreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			_ = p.svc.sessions.Delete(ctx, p.sessionID)
			return nil, identity.WrapError(identity.CodeNotAuthenticated, "Refresh token rejected", err)
		}
		return nil, identity.WrapError(identity.CodeServiceUnavailable, "Failed to refresh session", err)
	}

	record.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		record.RefreshToken = tok.RefreshToken
	}
	record.ExpiresAt = tok.Expiry
	if rawIDToken, ok := tok.Extra("id_token").(string); ok && rawIDToken != "" {
		idToken, err := verifier.Verify(p.svc.clientContext(ctx), rawIDToken)
		if err != nil {
			return nil, identity.WrapError(identity.CodeNotAuthenticated, "Refreshed ID token rejected", err)
		}
		record.IDToken = rawIDToken
		record.ExpiresAt = idToken.Expiry
	}

	if err := p.svc.sessions.Upsert(ctx, p.sessionID, record); err != nil {
		return nil, errors.Wrap(err, "[oidcprovider.refresh] sessions.Upsert")
	}
	return toSession(record), nil
}

func toSession(record loginsession.Session) *identity.Session {
	return &identity.Session{
		IDToken:      record.IDToken,
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		ExpiresAt:    record.ExpiresAt,
	}
}

type idTokenClaims struct {
	Subject           string `json:"sub"`
	CognitoUsername   string `json:"cognito:username"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Role              string `json:"custom:role"`
}

func identityFromToken(idToken *oidc.IDToken) (*identity.Identity, error) {
	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "failed to parse ID token claims")
	}

	username := claims.CognitoUsername
	for _, candidate := range []string{claims.PreferredUsername, claims.Email, claims.Subject} {
		if username != "" {
			break
		}
		username = candidate
	}

	attrs := identity.Attributes{}
	set := func(name, value string) {
		if value != "" {
			attrs[name] = value
		}
	}
	set(identity.AttributeEmail, claims.Email)
	set(identity.AttributeGivenName, claims.GivenName)
	set(identity.AttributeFamilyName, claims.FamilyName)
	set(identity.AttributeRole, claims.Role)

	return &identity.Identity{Username: username, Attributes: attrs}, nil
}

// classifyTokenError maps a token endpoint failure onto a provider code.
// Providers that pass their own codes through in the error field keep them.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return identity.WrapError(identity.CodeServiceUnavailable, "Token request failed", err)
	}

	message := re.ErrorDescription
	if message == "" {
		message = "Incorrect username or password."
	}

	switch code := identity.ErrorCode(re.ErrorCode); code {
	case identity.CodeUserNotFound, identity.CodeUserNotConfirmed, identity.CodeNotAuthorized,
		identity.CodeInvalidParameter, identity.CodeInvalidPassword:
		return identity.WrapError(code, message, err)
	case "invalid_grant", "unauthorized_client", "access_denied":
		return identity.WrapError(identity.CodeNotAuthorized, message, err)
	}

	if re.Response != nil && re.Response.StatusCode >= http.StatusInternalServerError {
		return identity.WrapError(identity.CodeServiceUnavailable, "Identity provider error", err)
	}
	return identity.WrapError(identity.CodeNotAuthorized, message, err)
}
