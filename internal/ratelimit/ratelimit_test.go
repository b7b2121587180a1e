// internal/ratelimit/ratelimit_test.go
//
// Unit-tests for the per-caller login limiter.

package ratelimit

import "testing"

func TestLoginLimiter_BudgetPerKey(t *testing.T) {
	l := NewLoginLimiter()

	// The burst admits exactly loginAttempts back-to-back calls.
	for i := 0; i < loginAttempts; i++ {
		if !l.Allow("198.51.100.7") {
			t.Fatalf("attempt %d denied within burst", i+1)
		}
	}
	if l.Allow("198.51.100.7") {
		t.Error("attempt beyond the burst admitted")
	}

	// Another caller has an independent bucket.
	if !l.Allow("203.0.113.9") {
		t.Error("fresh key denied")
	}
}

func TestLoginLimiter_BucketMapBounded(t *testing.T) {
	l := NewLoginLimiter()

	for i := 0; i < maxBuckets*2; i++ {
		l.Allow(string(rune('a'+i%26)) + string(rune('0'+i%10)) + string(rune(i)))
	}
	l.mu.Lock()
	n := l.buckets.Len()
	l.mu.Unlock()
	if n > maxBuckets {
		t.Errorf("bucket map grew to %d, cap is %d", n, maxBuckets)
	}
}
