package testutil

import "sync"

// Navigator records every navigation.
type Navigator struct {
	mu      sync.Mutex
	visited []string
}

// Navigate records path.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visited = append(n.visited, path)
}

// Visited returns the recorded paths in order.
func (n *Navigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visited...)
}

// CountOf returns how often path was visited.
func (n *Navigator) CountOf(path string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, p := range n.visited {
		if p == path {
			count++
		}
	}
	return count
}
