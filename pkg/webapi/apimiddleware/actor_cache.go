package apimiddleware

import (
	"sync"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
)

// ActorCache remembers the user behind each API token it has seen.
type ActorCache struct {
	mu       sync.RWMutex
	cache    map[string]*arsipmodel.User
	userStor stor.UserStor
}

func NewActorCache(userStor stor.UserStor) *ActorCache {
	return &ActorCache{
		cache:    make(map[string]*arsipmodel.User),
		userStor: userStor,
	}
}

func (c *ActorCache) GetUserByAPIToken(token string) (*arsipmodel.User, error) {
	c.mu.RLock()

	if user, ok := c.cache[token]; ok {
		c.mu.RUnlock()
		return user, nil
	}

	c.mu.RUnlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have loaded the user between the two locks.
	if user, ok := c.cache[token]; ok {
		return user, nil
	}

	user, err := c.userStor.GetUserByAPIToken(token)
	if err != nil {
		return nil, err
	}

	c.cache[token] = user
	return user, nil
}

// Forget drops token, for example after the user's role or unit changed.
func (c *ActorCache) Forget(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, token)
}
