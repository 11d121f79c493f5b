package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]RefreshToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, t RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.Token] = t
	return nil
}

func (r *MemoryRepository) Consume(ctx context.Context, token string) (RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return RefreshToken{}, common.ErrNotFound
	}
	delete(r.tokens, token)
	return t, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if !now.Before(t.Expires) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}
