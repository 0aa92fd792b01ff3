package keypool

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultCooldown is the duration added to disabled_until on mark_exhausted
// when no KEY_COOLDOWN_HOURS override is configured.
const DefaultCooldown = 24 * time.Hour

// Pool is the shared, mutex-guarded set of upstream credentials. All field
// mutations happen under mu, held only for the duration of Select,
// MarkSuccess, MarkExhausted, Reset*, or Reload — never across network I/O.
type Pool struct {
	mu           sync.Mutex
	keys         []Credential
	currentIndex int
	states       map[Credential]*KeyState
	cooldown     time.Duration
	sourceFile   string
	extraPaths   []string
	// persistMu serializes cooldown-file writes so two concurrent
	// MarkExhausted calls can't race a stale snapshot over a fresher one.
	persistMu sync.Mutex
}

// New builds a Pool by reading the priority-ordered key files and any
// persisted cooldown state. extraSearchPaths are tried, in order, after the
// fixed key-file layout.
func New(cooldown time.Duration, extraSearchPaths ...string) (*Pool, error) {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	p := &Pool{
		states:     make(map[Credential]*KeyState),
		cooldown:   cooldown,
		extraPaths: extraSearchPaths,
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFromCredentials builds a Pool directly from an in-memory credential
// list, bypassing disk I/O. Used by tests and by callers that source
// credentials from something other than the fixed key-file layout.
func NewFromCredentials(creds []Credential, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	p := &Pool{
		keys:     append([]Credential(nil), creds...),
		states:   make(map[Credential]*KeyState, len(creds)),
		cooldown: cooldown,
	}
	for _, c := range creds {
		p.states[c] = &KeyState{}
	}
	return p
}

// Reload re-reads the key files, replacing the keys vector while preserving
// existing KeyState entries for credentials still present (counters and
// active cooldowns survive a reload).
func (p *Pool) Reload() error {
	creds, source, err := loadCredentialsFromDisk(p.extraPaths)
	if err != nil {
		return err
	}
	saved := loadCooldowns()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.keys = creds
	p.sourceFile = source
	if p.currentIndex >= len(p.keys) {
		p.currentIndex = 0
	}
	for _, c := range creds {
		if _, ok := p.states[c]; ok {
			continue
		}
		state := &KeyState{}
		if until, ok := saved[c]; ok {
			state.Disabled = true
			state.DisabledUntil = until
		}
		p.states[c] = state
	}
	log.Infof("keypool: reloaded %d credentials from %s", len(p.keys), source)
	return nil
}

// stateFor returns the KeyState for c, creating one lazily on first touch.
// Caller must hold mu.
func (p *Pool) stateFor(c Credential) *KeyState {
	state, ok := p.states[c]
	if !ok {
		state = &KeyState{}
		p.states[c] = state
	}
	return state
}

// Select implements the round-robin-with-lazy-re-enable algorithm, falling
// back to the smallest-remaining-cooldown credential in degraded mode.
func (p *Pool) Select() (Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.keys)
	if n == 0 {
		return "", false
	}

	now := time.Now()
	for i := 0; i < n; i++ {
		idx := (p.currentIndex + i) % n
		cred := p.keys[idx]
		state := p.stateFor(cred)
		if state.Disabled && !now.Before(state.DisabledUntil) {
			state.Disabled = false
		}
		if !state.Disabled {
			p.currentIndex = (idx + 1) % n
			state.LastUsed = now
			return cred, true
		}
	}

	// Degraded mode: every credential is disabled. Return the one with the
	// smallest remaining cooldown as a best-effort last resort.
	best := p.keys[0]
	bestRemaining := p.stateFor(best).DisabledUntil.Sub(now)
	for _, cred := range p.keys[1:] {
		remaining := p.stateFor(cred).DisabledUntil.Sub(now)
		if remaining < bestRemaining {
			best = cred
			bestRemaining = remaining
		}
	}
	p.stateFor(best).LastUsed = now
	return best, true
}

// MarkSuccess increments success_count. It does not clear a prior disabled
// state; lazy re-enable in Select already handles that.
func (p *Pool) MarkSuccess(c Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stateFor(c).SuccessCount++
}

// MarkExhausted disables c for the pool's cooldown duration and persists the
// updated cooldown set to disk. disabled_until never moves earlier: a
// credential already under a longer cooldown (e.g. seeded from disk) keeps
// its existing deadline.
func (p *Pool) MarkExhausted(c Credential) {
	p.mu.Lock()
	state := p.stateFor(c)
	state.Disabled = true
	if until := time.Now().Add(p.cooldown); until.After(state.DisabledUntil) {
		state.DisabledUntil = until
	}
	state.ErrorCount++
	p.mu.Unlock()

	p.persistCooldownsNow()
}

// persistCooldownsNow rewrites the cooldown file from the pool's current
// state. persistMu serializes the snapshot-then-write sequence across
// concurrent callers, so the last write always reflects every caller's
// update rather than whichever snapshot happened to be taken first.
func (p *Pool) persistCooldownsNow() {
	p.persistMu.Lock()
	defer p.persistMu.Unlock()

	p.mu.Lock()
	records := p.cooldownRecordsLocked()
	p.mu.Unlock()

	persistCooldowns(records)
}

// cooldownRecordsLocked builds the persisted-cooldown snapshot. Caller must
// hold mu.
func (p *Pool) cooldownRecordsLocked() []CooldownRecord {
	var records []CooldownRecord
	for cred, state := range p.states {
		if state.Disabled {
			records = append(records, CooldownRecord{
				Credential:    string(cred),
				DisabledUntil: state.DisabledUntil,
			})
		}
	}
	return records
}

// ResetAll clears every KeyState back to zero values.
func (p *Pool) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for cred := range p.states {
		p.states[cred] = &KeyState{}
	}
}

// Reset clears the KeyState for the credential at slot index i. Returns
// false if i is out of range.
func (p *Pool) Reset(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.keys) {
		return false
	}
	p.states[p.keys[i]] = &KeyState{}
	return true
}

// Status returns an admin-facing snapshot of the pool.
func (p *Pool) Status() PoolStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	status := PoolStatus{
		Total: len(p.keys),
		Keys:  make([]KeyStatusView, 0, len(p.keys)),
	}
	for _, cred := range p.keys {
		state := p.stateFor(cred)
		view := KeyStatusView{
			Credential:   cred.Masked(),
			Disabled:     state.Disabled,
			ErrorCount:   state.ErrorCount,
			SuccessCount: state.SuccessCount,
			LastUsed:     state.LastUsed,
		}
		if state.Disabled {
			view.DisabledUntil = state.DisabledUntil
			if remaining := state.DisabledUntil.Sub(now); remaining > 0 {
				view.RemainingCooldown = remaining.Round(time.Second).String()
			}
			status.Disabled++
		} else {
			status.Available++
		}
		status.Keys = append(status.Keys, view)
	}
	return status
}

// Len reports the current number of known credentials.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
