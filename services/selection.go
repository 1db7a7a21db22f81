package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const selectionTTL = 24 * time.Hour

// SelectionService keeps the per-session set of media URLs marked for
// export, in selection order. Backed by Redis when available, an
// in-memory map otherwise; either way the set is never persisted with the
// posts and is cleared explicitly.
type SelectionService struct {
	redis *redis.Client

	mu    sync.Mutex
	local map[string][]string
}

// NewSelectionService creates a new selection service instance. A nil
// Redis client switches it to in-memory mode.
func NewSelectionService(client *redis.Client) *SelectionService {
	return &SelectionService{
		redis: client,
		local: make(map[string][]string),
	}
}

func selectionKey(session string) string {
	return "selection:" + session
}

// Toggle flips a URL's membership and reports whether it is now selected.
func (s *SelectionService) Toggle(ctx context.Context, session, url string) (bool, error) {
	if s.redis != nil {
		key := selectionKey(session)
		removed, err := s.redis.LRem(ctx, key, 0, url).Result()
		if err != nil {
			return false, err
		}
		if removed > 0 {
			return false, nil
		}
		if err := s.redis.RPush(ctx, key, url).Err(); err != nil {
			return false, err
		}
		s.redis.Expire(ctx, key, selectionTTL)
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	urls := s.local[session]
	for i, u := range urls {
		if u == url {
			s.local[session] = append(urls[:i], urls[i+1:]...)
			return false, nil
		}
	}
	s.local[session] = append(urls, url)
	return true, nil
}

// List returns the selected URLs in selection order.
func (s *SelectionService) List(ctx context.Context, session string) ([]string, error) {
	if s.redis != nil {
		urls, err := s.redis.LRange(ctx, selectionKey(session), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		return urls, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, len(s.local[session]))
	copy(urls, s.local[session])
	return urls, nil
}

// Clear empties the session's selection.
func (s *SelectionService) Clear(ctx context.Context, session string) error {
	if s.redis != nil {
		return s.redis.Del(ctx, selectionKey(session)).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, session)
	return nil
}
