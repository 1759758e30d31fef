package broadcastify

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// UserAgentRotator produces browser-like User-Agent strings with randomized
// version components, one per request. Safe for concurrent use by fetch
// workers.
type UserAgentRotator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewUserAgentRotator returns a rotator seeded from the current time.
func NewUserAgentRotator() *UserAgentRotator {
	return NewSeededUserAgentRotator(time.Now().UnixNano())
}

// NewSeededUserAgentRotator returns a rotator with a fixed seed. Output is
// deterministic per seed.
func NewSeededUserAgentRotator(seed int64) *UserAgentRotator {
	return &UserAgentRotator{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns a fresh User-Agent string.
func (r *UserAgentRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	webkit := r.intn(100, 1000)
	chromeMinor := r.intn(10, 100) % 10
	chromePatch := r.intn(100, 1000)
	safari := r.intn(10, 100)

	if r.rnd.Intn(2) == 0 {
		return fmt.Sprintf(
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/%d.36 (KHTML, like Gecko) Chrome/58.0.%d.3029.%d Safari/537.%d",
			webkit, chromeMinor, chromePatch, safari)
	}

	opera := r.intn(1000, 10000)
	return fmt.Sprintf(
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/%d.36 (KHTML, like Gecko) Chrome/51.%d.2704.%d Safari/537.%d OPR/38.0.%d.41",
		webkit, chromeMinor, chromePatch, safari, opera)
}

// intn returns a random int in [lo, hi).
func (r *UserAgentRotator) intn(lo, hi int) int {
	return lo + r.rnd.Intn(hi-lo)
}
