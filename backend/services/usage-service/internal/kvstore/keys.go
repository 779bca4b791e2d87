// Package kvstore keeps usage entries and per-user settings in key-value stores (Redis or an
// embedded bbolt file). Entries live under a per-user key prefix and are read back with a
// prefix scan.
package kvstore

import (
	"encoding/json"
	"strings"

	"energydash/backend/services/usage-service/internal/models"
)

const (
	usageNamespace  = "usage"
	goalNamespace   = "goal"
	alertsNamespace = "alerts"

	redisSep = ":"
	// boltSep cannot appear in user ids coming from JWT subjects.
	boltSep = "\x00"
)

func redisEntryKey(userID, entryID string) string {
	return usageNamespace + redisSep + userID + redisSep + entryID
}

// redisEntryPattern matches every entry key of the user. Glob metacharacters in the id are
// escaped so that one user's pattern cannot widen into others.
func redisEntryPattern(userID string) string {
	return usageNamespace + redisSep + escapeGlob(userID) + redisSep + "*"
}

func redisSettingsKey(namespace, userID string) string {
	return namespace + redisSep + userID
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boltUserPrefix(userID string) []byte {
	return []byte(userID + boltSep)
}

func boltEntryKey(userID, entryID string) []byte {
	return []byte(userID + boltSep + entryID)
}

// decodeEntries unmarshals raw values and keeps only entries owned by userID; a prefix may
// also match ids that merely start with the user id.
func decodeEntries(userID string, raws [][]byte) ([]models.UsageEntry, error) {
	entries := make([]models.UsageEntry, 0, len(raws))
	for _, raw := range raws {
		var e models.UsageEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, err
		}
		if e.UserID != userID {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
