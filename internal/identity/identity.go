// Package identity manages the authenticated user context that scopes all
// remote document paths. A session is created on sign-in and destroyed on
// sign-out; components receive it explicitly instead of reading globals.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"geminios/internal/logging"
)

// Provider identifies how a session was established.
type Provider string

const (
	ProviderAnonymous Provider = "anonymous"
	ProviderToken     Provider = "token"
)

// Identity is the authenticated user context.
type Identity struct {
	UID      string
	Provider Provider
}

// Session is the lifecycle object handed to the mirror and the feature
// layers. It is created by SignIn and invalidated by SignOut.
type Session struct {
	ID        string
	Identity  Identity
	CreatedAt time.Time
}

// SignIn establishes a session. A non-empty token yields a stable UID
// derived from the token (the external auth provider owns verification);
// otherwise an anonymous identity with a fresh UID is issued.
func SignIn(token string) (*Session, error) {
	var id Identity
	token = strings.TrimSpace(token)
	if token != "" {
		sum := sha256.Sum256([]byte(token))
		id = Identity{
			UID:      hex.EncodeToString(sum[:])[:28],
			Provider: ProviderToken,
		}
	} else {
		id = Identity{
			UID:      uuid.NewString(),
			Provider: ProviderAnonymous,
		}
	}

	sess := &Session{
		ID:        fmt.Sprintf("sess_%d", time.Now().UnixNano()),
		Identity:  id,
		CreatedAt: time.Now(),
	}
	logging.Session("sign-in uid=%s provider=%s", id.UID, id.Provider)
	return sess, nil
}

// SignOut invalidates the session. Callers must detach the mirror first.
func SignOut(sess *Session) {
	if sess == nil {
		return
	}
	logging.Session("sign-out uid=%s", sess.Identity.UID)
	sess.Identity = Identity{}
}

// Valid reports whether the session still carries an identity.
func (s *Session) Valid() bool {
	return s != nil && s.Identity.UID != ""
}

// DocumentKey returns the namespaced key for one of this user's logical
// documents (filesystem, chat, settings).
func (s *Session) DocumentKey(kind string) string {
	return fmt.Sprintf("users/%s/%s", s.Identity.UID, kind)
}
