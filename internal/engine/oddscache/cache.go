package oddscache

import (
	"sync"
	"time"
)

// Key identifica uma entrada: partida + filtro de mercado ("" = todos).
type Key struct {
	MatchID string
	Filter  string
}

// Cache memoriza resultados do modelo de odds por TTL. É pura otimização
// de latência: nenhuma invariante de negócio mora aqui e o valuator de
// cash-out nunca consulta este cache.
//
// Instância explícita, injetada pelo composition root — sem estado global.
// Seguro para leituras concorrentes e escrita ocasional de refresh.
type Cache[V any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time // injetável nos testes

	entries map[Key]entry[V]
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]entry[V]),
	}
}

// Get devolve a entrada se ainda estiver dentro do TTL.
func (c *Cache[V]) Get(k Key) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set grava a entrada com timestamp fresco.
func (c *Cache[V]) Set(k Key, v V) {
	c.mu.Lock()
	c.entries[k] = entry[V]{value: v, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate descarta todas as entradas de uma partida, independente do TTL.
// Usado quando o feed publica um tick novo ou após override manual de odds.
func (c *Cache[V]) Invalidate(matchID string) {
	c.mu.Lock()
	for k := range c.entries {
		if k.MatchID == matchID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len é usado por métricas e testes.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SetClock troca a fonte de tempo (testes).
func (c *Cache[V]) SetClock(now func() time.Time) { c.now = now }
