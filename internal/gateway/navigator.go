package gateway

import "sync"

// Navigator performs the navigations the gateway triggers on its own.
type Navigator interface {
	// Navigate is a client-side route change.
	Navigate(path string)
	// Redirect is a full reload that discards in-memory state.
	Redirect(path string)
}

// NopNavigator ignores navigations.
type NopNavigator struct{}

func (NopNavigator) Navigate(string) {}
func (NopNavigator) Redirect(string) {}

// RecordingNavigator remembers every navigation. It is safe for concurrent use.
type RecordingNavigator struct {
	mu          sync.Mutex
	navigations []string
	redirects   []string
}

func (n *RecordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigations = append(n.navigations, path)
}

func (n *RecordingNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, path)
}

// Navigations returns the client-side navigations seen so far.
func (n *RecordingNavigator) Navigations() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.navigations...)
}

// Redirects returns the full reloads seen so far.
func (n *RecordingNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

