package client

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// PasswordCache хранит в памяти пароли записей, подтвержденные сервером, чтобы
// не спрашивать их повторно в рамках одной работы с клиентом. Это только подсказка:
// сервер проверяет пароль при каждом запросе, и кэш никогда не пишется на диск.
type PasswordCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	clock clockwork.Clock
	items map[int]cachedPassword
}

type cachedPassword struct {
	password  string
	expiresAt time.Time
}

// NewPasswordCache создает кэш. ttl <= 0 отключает кэширование.
func NewPasswordCache(ttl time.Duration, clock clockwork.Clock) *PasswordCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PasswordCache{
		ttl:   ttl,
		clock: clock,
		items: make(map[int]cachedPassword),
	}
}

func (c *PasswordCache) Put(entryID int, password string) {
	if c.ttl <= 0 || password == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[entryID] = cachedPassword{
		password:  password,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *PasswordCache) Get(entryID int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[entryID]
	if !ok {
		return "", false
	}
	if !c.clock.Now().Before(item.expiresAt) {
		delete(c.items, entryID)
		return "", false
	}
	return item.password, true
}

func (c *PasswordCache) Evict(entryID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, entryID)
}

// Clear забывает все пароли, например после завершения сессии.
func (c *PasswordCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.items)
}

func (c *PasswordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
