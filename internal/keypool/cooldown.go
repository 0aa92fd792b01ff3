package keypool

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

const cooldownFilePath = "data/keys/cooldown_keys.json"

// loadCooldowns reads the persisted cooldown file, dropping entries whose
// disabled_until has already elapsed.
func loadCooldowns() map[Credential]time.Time {
	out := make(map[Credential]time.Time)
	data, err := os.ReadFile(cooldownFilePath)
	if err != nil {
		return out
	}
	var records []CooldownRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warnf("keypool: discarding unreadable cooldown file %s: %v", cooldownFilePath, err)
		return out
	}
	now := time.Now()
	for _, rec := range records {
		if rec.Credential == "" || !rec.DisabledUntil.After(now) {
			continue
		}
		out[Credential(rec.Credential)] = rec.DisabledUntil
	}
	return out
}

// persistCooldowns rewrites the cooldown file with the currently disabled
// credentials. Best-effort: failures are logged, never returned to the
// caller. It runs outside the pool's state lock.
func persistCooldowns(records []CooldownRecord) {
	if err := os.MkdirAll(filepath.Dir(cooldownFilePath), 0o755); err != nil {
		log.Warnf("keypool: failed to create cooldown directory: %v", err)
		return
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Warnf("keypool: failed to marshal cooldown records: %v", err)
		return
	}
	if err := os.WriteFile(cooldownFilePath, data, 0o644); err != nil {
		log.Warnf("keypool: failed to write cooldown file: %v", err)
	}
}
