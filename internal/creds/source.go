// Package creds provides embedding credential sources. A source is a
// process singleton; the tokens it hands out may be short-lived and are
// fetched once per inbound request.
package creds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoCredential signals that the source has no token to hand out.
var ErrNoCredential = errors.New("no embedding credential available")

// Static always returns the same token.
type Static struct {
	token string
}

// NewStatic creates a source with a fixed token.
func NewStatic(token string) *Static { return &Static{token: token} }

// Token returns the configured token.
func (s *Static) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

// Env reads the token from an environment variable on every call, so a
// supervisor can rotate the credential without a restart.
type Env struct {
	name string
}

// NewEnv creates a source backed by the named environment variable.
func NewEnv(name string) *Env { return &Env{name: name} }

// Token reads the variable.
func (e *Env) Token(context.Context) (string, error) {
	v := strings.TrimSpace(os.Getenv(e.name))
	if v == "" {
		return "", fmt.Errorf("%w: env %s is empty", ErrNoCredential, e.name)
	}
	return v, nil
}

// File re-reads a token file on every call. Suited to mounted secrets that
// are refreshed in place.
type File struct {
	path string
}

// NewFile creates a source backed by a token file.
func NewFile(path string) *File { return &File{path: path} }

// Token reads the file.
func (f *File) Token(context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNoCredential, f.path)
	}
	return v, nil
}
