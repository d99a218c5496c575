package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/balcao/balcao/internal/model"
)

// DefaultClaimsCacheTTL bounds how long verified claims stay cached.
const DefaultClaimsCacheTTL = 5 * time.Minute

// CachingVerifier memoizes successful verifications in process memory.
// Cached entries never outlive the token: expiry is re-checked on every hit,
// and failures are never cached.
type CachingVerifier struct {
	next   Verifier
	cache  *gocache.Cache
	maxTTL time.Duration
	clock  clock
}

// NewCachingVerifier wraps next with a claims cache.
func NewCachingVerifier(next Verifier, maxTTL time.Duration, opts ...Option) *CachingVerifier {
	if maxTTL <= 0 {
		maxTTL = DefaultClaimsCacheTTL
	}
	return &CachingVerifier{
		next:   next,
		cache:  gocache.New(maxTTL, time.Minute),
		maxTTL: maxTTL,
		clock:  newClock(opts),
	}
}

// Verify returns cached claims when present and unexpired, otherwise delegates.
func (v *CachingVerifier) Verify(token string) (model.Claims, error) {
	key := QuickHash(token)

	if cached, ok := v.cache.Get(key); ok {
		if claims, ok := cached.(model.Claims); ok {
			if v.clock.now().Before(claims.ExpiresAt) {
				return claims, nil
			}
			v.cache.Delete(key)
			return model.Claims{}, unauthenticated("token expired")
		}
	}

	claims, err := v.next.Verify(token)
	if err != nil {
		return model.Claims{}, err
	}

	ttl := claims.ExpiresAt.Sub(v.clock.now())
	if ttl > v.maxTTL {
		ttl = v.maxTTL
	}
	if ttl > 0 {
		v.cache.Set(key, claims, ttl)
	}

	return claims, nil
}

// QuickHash returns a SHA256 hex digest used as a cache key.
// Raw tokens are never kept as keys.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
