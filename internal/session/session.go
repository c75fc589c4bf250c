// Package session keeps per-visitor state on the server. The browser only
// holds a signed cookie with the session id.
package session

import (
	"context"
	"fmt"
)

// Names of the values stored for every session.
const (
	ValueHits  = "hits"
	ValueOwn   = "own"
	ValueAdmin = "admin"
	ValueUser  = "user"
)

// Store reads and writes named values scoped to one session.
// Get leaves dst untouched when the value was never set.
type Store interface {
	Get(ctx context.Context, sessionID, name string, dst any) error
	Set(ctx context.Context, sessionID, name string, value any) error
}

// State is the typed view of a session.
type State struct {
	ID     string
	UserID int64
	Admin  bool
	Own    map[int64]bool
	Hits   map[int64]bool
}

// Load reads every named value of the session into a State.
func Load(ctx context.Context, store Store, sessionID string) (State, error) {
	st := State{
		ID:   sessionID,
		Own:  map[int64]bool{},
		Hits: map[int64]bool{},
	}
	if err := store.Get(ctx, sessionID, ValueUser, &st.UserID); err != nil {
		return State{}, fmt.Errorf("load session user: %w", err)
	}
	if err := store.Get(ctx, sessionID, ValueAdmin, &st.Admin); err != nil {
		return State{}, fmt.Errorf("load session admin: %w", err)
	}
	if err := store.Get(ctx, sessionID, ValueOwn, &st.Own); err != nil {
		return State{}, fmt.Errorf("load session own: %w", err)
	}
	if err := store.Get(ctx, sessionID, ValueHits, &st.Hits); err != nil {
		return State{}, fmt.Errorf("load session hits: %w", err)
	}
	if st.Own == nil {
		st.Own = map[int64]bool{}
	}
	if st.Hits == nil {
		st.Hits = map[int64]bool{}
	}
	return st, nil
}

// Authenticated reports whether a user is logged in on this session.
func (s State) Authenticated() bool {
	return s.UserID != 0
}

// MarkOwn records that the session created pageID.
func MarkOwn(ctx context.Context, store Store, sessionID string, pageID int64) error {
	own := map[int64]bool{}
	if err := store.Get(ctx, sessionID, ValueOwn, &own); err != nil {
		return err
	}
	if own == nil {
		own = map[int64]bool{}
	}
	own[pageID] = true
	return store.Set(ctx, sessionID, ValueOwn, own)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying st.
func NewContext(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the State stored by NewContext.
func FromContext(ctx context.Context) (State, bool) {
	st, ok := ctx.Value(contextKey{}).(State)
	return st, ok
}
