// Package session holds the engine's restorable user state: the entered
// text and the compact descriptors of saved variants.
//
// Full rendered documents are never persisted; they can be arbitrarily
// large, and a descriptor plus the user text regenerates an identical
// variant deterministically. The Store interface has memory and file
// implementations; multi-instance API deployments can keep sessions small
// enough to live in the shared Redis cache instead.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"time"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/pipeline"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session is the restorable state of one user interaction.
type Session struct {
	ID        string                `json:"id"`
	Text      string                `json:"text"`
	Saved     []pipeline.Descriptor `json:"saved,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// IsExpired reports whether the session has exceeded its TTL.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Save records a variant descriptor, ignoring duplicates.
func (s *Session) Save(d pipeline.Descriptor) {
	for _, existing := range s.Saved {
		if existing == d {
			return
		}
	}
	s.Saved = append(s.Saved, d)
}

// New creates a session for the given text.
func New(text string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns nil, nil when the session
	// does not exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// DeepLink is the shareable form of one variant: the user text plus the
// compact descriptor, suitable for round-tripping through a query string.
type DeepLink struct {
	Text       string
	Descriptor pipeline.Descriptor
}

// Encode serializes the deep link as a query string.
func (l DeepLink) Encode() string {
	v, _ := url.ParseQuery(l.Descriptor.Encode())
	v.Set("text", l.Text)
	return v.Encode()
}

// DecodeDeepLink parses a deep link from its query-string form.
func DecodeDeepLink(s string) (DeepLink, error) {
	v, err := url.ParseQuery(s)
	if err != nil {
		return DeepLink{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse deep link")
	}
	text := v.Get("text")
	if text == "" {
		return DeepLink{}, errors.New(errors.ErrCodeInvalidInput, "deep link has no text")
	}
	v.Del("text")
	d, err := pipeline.DecodeDescriptor(v.Encode())
	if err != nil {
		return DeepLink{}, err
	}
	return DeepLink{Text: text, Descriptor: d}, nil
}
