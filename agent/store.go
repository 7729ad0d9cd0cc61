package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/tbxark/depositagent/cache"
	"github.com/tbxark/depositagent/types"
)

const (
	DefaultSessionNamespace = "deposit:session"
	DefaultSessionTTL       = time.Hour
)

// SessionStore persists sessions. A session that is not deleted stays readable
// for a bounded time, after which Get reports ErrSessionNotFound.
type SessionStore interface {
	Create(ctx context.Context, variant types.Variant) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// CacheSessionStore stores sessions as JSON under a namespaced key. Every Save
// refreshes the TTL.
type CacheSessionStore struct {
	core      cache.Cache
	namespace string
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
}

func NewCacheSessionStore(core cache.Cache, ttl time.Duration) *CacheSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &CacheSessionStore{
		core:      core,
		namespace: DefaultSessionNamespace,
		ttl:       ttl,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func NewMemorySessionStore(ttl time.Duration) *CacheSessionStore {
	return NewCacheSessionStore(cache.NewMemoryCache(), ttl)
}

func (s *CacheSessionStore) key(id string) string {
	return s.namespace + ":" + id
}

func (s *CacheSessionStore) Create(ctx context.Context, variant types.Variant) (*Session, error) {
	const attempts = 3
	for range attempts {
		id := s.newID()
		taken, err := s.core.Exists(ctx, s.key(id))
		if err != nil {
			return nil, fmt.Errorf("check session id: %w", err)
		}
		if taken {
			continue
		}
		now := s.now()
		session := &Session{
			ID:          id,
			Variant:     variant,
			Phase:       types.PhaseCollecting,
			CreatedAt:   now,
			LastUpdated: now,
		}
		if err := s.Save(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	}
	return nil, fmt.Errorf("could not allocate a unique session id after %d attempts", attempts)
}

func (s *CacheSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, ok, err := s.core.Get(ctx, s.key(id))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	var session Session
	if err := sonic.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *CacheSessionStore) Save(ctx context.Context, session *Session) error {
	raw, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := s.core.Set(ctx, s.key(session.ID), raw, s.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *CacheSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.core.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

var _ SessionStore = (*CacheSessionStore)(nil)
