package dispatch

import "time"

// KeyPool owns the ordered list of API keys, their cooldown state, and the
// round-robin cursor used to spread load across keys. Cooldowns are process
// lifetime only; only the visible key list is persisted elsewhere.
//
// The pool is not safe for concurrent use. The dispatcher and queue runner
// are strictly sequential, so callers mutate the pool between await points
// only (see the worker loop).
type KeyPool struct {
	keys     []string
	cooldown map[string]time.Time
	cursor   int
}

// NewKeyPool builds a pool over the given keys in order. Duplicates are
// expected to have been rejected at input time.
func NewKeyPool(keys []string) *KeyPool {
	p := &KeyPool{cooldown: make(map[string]time.Time)}
	p.keys = append(p.keys, keys...)
	return p
}

// Keys returns the ordered key values, ignoring cooldown state.
func (p *KeyPool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len reports the number of keys in the pool, cooled down or not.
func (p *KeyPool) Len() int {
	return len(p.keys)
}

func (p *KeyPool) eligible(key string, now time.Time) bool {
	until, ok := p.cooldown[key]
	return !ok || !now.Before(until)
}

// ListEligible returns the keys not currently cooling down, starting from the
// cursor position and wrapping around. Empty when the pool is empty or fully
// cooled down.
func (p *KeyPool) ListEligible(now time.Time) []string {
	n := len(p.keys)
	if n == 0 {
		return nil
	}
	if p.cursor >= n {
		p.cursor = 0
	}
	var out []string
	for i := 0; i < n; i++ {
		key := p.keys[(p.cursor+i)%n]
		if p.eligible(key, now) {
			out = append(out, key)
		}
	}
	return out
}

// Next consumes the next eligible key starting at the cursor and advances the
// cursor past it, so repeated dispatches rotate through the pool. The second
// return is false when no key is eligible.
func (p *KeyPool) Next(now time.Time) (string, bool) {
	n := len(p.keys)
	if n == 0 {
		return "", false
	}
	if p.cursor >= n {
		p.cursor = 0
	}
	for i := 0; i < n; i++ {
		idx := (p.cursor + i) % n
		key := p.keys[idx]
		if p.eligible(key, now) {
			p.cursor = (idx + 1) % n
			return key, true
		}
	}
	return "", false
}

// MarkFailed places the key into cooldown until now+d and advances the cursor
// so the following dispatch prefers a different key. A repeated failure
// overwrites the previous expiry.
func (p *KeyPool) MarkFailed(key string, d time.Duration, now time.Time) {
	p.cooldown[key] = now.Add(d)
	if n := len(p.keys); n > 0 {
		p.cursor = (p.cursor + 1) % n
	}
}

// Add appends a key to the pool.
func (p *KeyPool) Add(key string) {
	p.keys = append(p.keys, key)
}

// Remove drops a key and any cooldown entry for it. The cursor is decremented
// when the removed index was at or before it so it keeps pointing at the same
// neighbourhood, and reset to 0 if the pool shrank below it.
func (p *KeyPool) Remove(key string) {
	for i, k := range p.keys {
		if k != key {
			continue
		}
		p.keys = append(p.keys[:i], p.keys[i+1:]...)
		delete(p.cooldown, key)
		if i <= p.cursor && p.cursor > 0 {
			p.cursor--
		}
		if p.cursor >= len(p.keys) {
			p.cursor = 0
		}
		return
	}
}
