package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// RevocationList tracks revoked token IDs in memory. Entries expire with
// the token they refer to, so the list never outgrows the live token set.
type RevocationList struct {
	entries *cache.Cache
}

func NewRevocationList(cleanupInterval time.Duration) *RevocationList {
	return &RevocationList{
		entries: cache.New(TokenTTL, cleanupInterval),
	}
}

func (l *RevocationList) Revoke(jti string, ttl time.Duration) {
	if jti == "" || ttl <= 0 {
		return
	}
	l.entries.Set(jti, struct{}{}, ttl)
}

func (l *RevocationList) IsRevoked(jti string) bool {
	_, found := l.entries.Get(jti)
	return found
}

func (l *RevocationList) Len() int {
	return l.entries.ItemCount()
}
