package keypool

import "time"

// KeyState is the mutable health record for one Credential. The invariant
// disabled ⇒ disabled_until > 0 must hold at all times; lazy re-enable
// flips Disabled to false the next time a selection scan observes that the
// cooldown has elapsed, rather than via a background sweep.
type KeyState struct {
	Disabled      bool
	DisabledUntil time.Time
	ErrorCount    uint64
	SuccessCount  uint64
	LastUsed      time.Time
}

// KeyStatusView is the admin-facing, read-only projection of a KeyState.
type KeyStatusView struct {
	Credential       string    `json:"credential"`
	Disabled         bool      `json:"disabled"`
	DisabledUntil    time.Time `json:"disabled_until,omitempty"`
	RemainingCooldown string   `json:"remaining_cooldown,omitempty"`
	ErrorCount       uint64    `json:"error_count"`
	SuccessCount     uint64    `json:"success_count"`
	LastUsed         time.Time `json:"last_used,omitempty"`
}

// PoolStatus is the admin-facing snapshot of the whole pool.
type PoolStatus struct {
	Total     int             `json:"total"`
	Available int             `json:"available"`
	Disabled  int             `json:"disabled"`
	Keys      []KeyStatusView `json:"keys"`
}

// CooldownRecord is the persisted wire shape for cooldown_keys.json.
type CooldownRecord struct {
	Credential    string    `json:"credential"`
	DisabledUntil time.Time `json:"disabled_until"`
}
