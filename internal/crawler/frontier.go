package crawler

import "sync"

// frontier is a FIFO queue of URLs pending a fetch. Queueing and visiting
// share one set: a URL admitted once is never admitted again, so the
// traversal order is plain breadth-first with no duplicate fetches.
type frontier struct {
	mu    sync.Mutex
	queue []string
	seen  map[string]struct{}
}

func newFrontier() *frontier {
	return &frontier{
		queue: make([]string, 0, 1024),
		seen:  make(map[string]struct{}, 4096),
	}
}

// Admit enqueues the URL unless it has been admitted before. It reports
// whether the URL was accepted.
func (f *frontier) Admit(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[rawURL]; ok {
		return false
	}
	f.seen[rawURL] = struct{}{}
	f.queue = append(f.queue, rawURL)
	return true
}

// PopWave dequeues up to n URLs in FIFO order.
func (f *frontier) PopWave(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n > len(f.queue) {
		n = len(f.queue)
	}
	wave := f.queue[:n]
	f.queue = f.queue[n:]
	return wave
}

// Len returns the number of queued URLs.
func (f *frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
