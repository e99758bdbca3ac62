package server

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/goombaio/namegenerator"
	"github.com/labstack/echo/v4"

	apperrors "github.com/karantza/scrumpoker/internal/errors"
)

const (
	sessionName    = "scrumpoker"
	sessionKeyID   = "userid"
	sessionKeyName = "name"
)

// nameGenerator produces human-friendly two-word display names for
// first-time visitors.
type nameGenerator struct {
	mu  sync.Mutex
	gen namegenerator.Generator
}

func newNameGenerator(seed int64) *nameGenerator {
	return &nameGenerator{gen: namegenerator.NewNameGenerator(seed)}
}

// Generate returns a name like "Wispy Finch".
func (n *nameGenerator) Generate() string {
	n.mu.Lock()
	raw := n.gen.Generate()
	n.mu.Unlock()

	words := strings.Split(raw, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// ensureIdentity returns the caller's participant id and display name,
// assigning both on first contact. The token in the cookie is the join
// key into every room for the life of the client session, so it must be
// issued exactly once and echoed back verbatim afterwards.
func (s *Server) ensureIdentity(c echo.Context) (participantID, displayName string, err error) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// An undecodable cookie (rotated secret, tampering) is treated
		// as a new visitor rather than an error.
		session.Values = make(map[any]any)
	}

	id, okID := session.Values[sessionKeyID].(string)
	name, okName := session.Values[sessionKeyName].(string)
	if okID && okName && id != "" {
		return id, name, nil
	}

	id = uuid.NewString()
	name = s.names.Generate()
	session.Values[sessionKeyID] = id
	session.Values[sessionKeyName] = name

	if err := session.Save(c.Request(), c.Response()); err != nil {
		return "", "", apperrors.InternalError("failed to save session", err)
	}
	return id, name, nil
}

// setSessionName stores the new display name in the cookie so future
// auto-joins use it.
func (s *Server) setSessionName(c echo.Context, name string) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.Values[sessionKeyName] = name
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}
	return nil
}
