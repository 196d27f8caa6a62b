package auth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// Scopes requested from the remote store
var Scopes = []string{"readings:read", "profile:read"}

// Config holds the OAuth client credentials and the remote store's endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// RedirectURL returns the local callback address for port
func RedirectURL(port int) string {
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

// AuthResult contains the token and user info from successful auth
type AuthResult struct {
	Token  *oauth2.Token
	UserID string
}

// ExtractUserID extracts the user ID from the token extras.
// The token response carries either a "user" object or a flat "user_id".
func ExtractUserID(token *oauth2.Token) string {
	if token == nil {
		return ""
	}
	if user, ok := token.Extra("user").(map[string]interface{}); ok {
		if id, ok := user["id"].(string); ok {
			return id
		}
	}
	if id, ok := token.Extra("user_id").(string); ok {
		return id
	}
	return ""
}
