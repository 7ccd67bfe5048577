package memory

import (
	"context"
	"sync"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
)

// NamedTokenStore is a mutex-guarded map of named tokens.
type NamedTokenStore struct {
	mu     sync.Mutex
	tokens map[entity.NamedTokenKey]entity.NamedToken
}

var _ outbound.NamedTokenRepository = (*NamedTokenStore)(nil)

func NewNamedTokenStore() *NamedTokenStore {
	return &NamedTokenStore{
		tokens: make(map[entity.NamedTokenKey]entity.NamedToken),
	}
}

func (s *NamedTokenStore) SetToken(ctx context.Context, token *entity.NamedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Key] = *token
	return nil
}

func (s *NamedTokenStore) GetToken(ctx context.Context, key entity.NamedTokenKey) (*entity.NamedToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.live(key)
	if !ok {
		return nil, outbound.ErrNamedTokenNotFound
	}
	return &token, nil
}

func (s *NamedTokenStore) SwapToken(ctx context.Context, key entity.NamedTokenKey, expected string, replacement *entity.NamedToken) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.live(key)
	if !ok || current.Value != expected {
		return false, nil
	}
	s.tokens[key] = *replacement
	return true, nil
}

func (s *NamedTokenStore) RemoveToken(ctx context.Context, key entity.NamedTokenKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[key]; !ok {
		return outbound.ErrNamedTokenNotFound
	}
	delete(s.tokens, key)
	return nil
}

// live returns the token under key, dropping it if it has expired.
// Callers hold s.mu.
func (s *NamedTokenStore) live(key entity.NamedTokenKey) (entity.NamedToken, bool) {
	token, ok := s.tokens[key]
	if !ok {
		return entity.NamedToken{}, false
	}
	if token.IsExpired() {
		delete(s.tokens, key)
		return entity.NamedToken{}, false
	}
	return token, true
}
