// Package auth exchanges Spotify authorization codes and refresh tokens for access tokens.
package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpiryLeeway is how long before its real expiry a token is already treated as expired,
// so a token never lapses between the check and the upstream call that uses it.
const ExpiryLeeway = 60 * time.Second

// TokenInfo is the token state kept in a user's session.
type TokenInfo struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// IsExpired reports whether tok must be refreshed before use at time now.
// A zero ExpiresAt means the provider gave no lifetime and the token never expires.
func IsExpired(tok *TokenInfo, now time.Time) bool {
	if tok == nil {
		return true
	}
	if tok.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(ExpiryLeeway).Before(tok.ExpiresAt)
}

// OAuth2 returns tok as a bearer token for golang.org/x/oauth2 transports.
func (tok *TokenInfo) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.ExpiresAt,
		TokenType:    "Bearer",
	}
}

// fromOAuth2 converts a token endpoint response into a TokenInfo.
func fromOAuth2(tok *oauth2.Token) *TokenInfo {
	info := &TokenInfo{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		info.Scope = scope
	}
	return info
}
