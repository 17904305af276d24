package dispatch

import "time"

// Fallback holds the ordered candidate models for one request class (text,
// image or video) together with per-model cooldowns. The priority order is
// fixed at construction: the user-selected model first, then the remaining
// declared models in declaration order. Cooldowns never reorder the list.
type Fallback struct {
	models   []string
	cooldown map[string]time.Time
}

// NewFallback builds the candidate list for a request class. When preferred
// is empty or not among the declared models it is simply skipped.
func NewFallback(preferred string, declared []string) *Fallback {
	f := &Fallback{cooldown: make(map[string]time.Time)}
	seen := make(map[string]struct{}, len(declared)+1)
	if preferred != "" {
		f.models = append(f.models, preferred)
		seen[preferred] = struct{}{}
	}
	for _, m := range declared {
		if _, ok := seen[m]; ok {
			continue
		}
		f.models = append(f.models, m)
		seen[m] = struct{}{}
	}
	return f
}

// Models returns the full priority list, ignoring cooldown state.
func (f *Fallback) Models() []string {
	out := make([]string, len(f.models))
	copy(out, f.models)
	return out
}

// ListEligible filters out models whose cooldown has not expired, preserving
// priority order.
func (f *Fallback) ListEligible(now time.Time) []string {
	var out []string
	for _, m := range f.models {
		until, ok := f.cooldown[m]
		if !ok || !now.Before(until) {
			out = append(out, m)
		}
	}
	return out
}

// MarkFailed places the model into cooldown until now+d. Later failures reset
// the expiry further into the future; they do not accumulate.
func (f *Fallback) MarkFailed(model string, d time.Duration, now time.Time) {
	f.cooldown[model] = now.Add(d)
}
