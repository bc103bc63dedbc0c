// Package mockable exposes swappable clock functions so packages doing
// deadline arithmetic stay deterministic under test.
package mockable

import "time"

var TimeNow = time.Now

// MockTimeNow pins TimeNow to a fixed instant.
func MockTimeNow(t time.Time) {
	TimeNow = func() time.Time {
		return t
	}
}

// UnmockTimeNow restores the real clock.
func UnmockTimeNow() {
	TimeNow = time.Now
}
