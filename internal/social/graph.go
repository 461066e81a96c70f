package social

import (
	"slices"
	"sync"
)

// Stats are the follow counters of a user.
type Stats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// Graph is the follow graph of record.
type Graph struct {
	mu        sync.RWMutex
	followers map[string]map[string]struct{} // user -> followers
	following map[string]map[string]struct{} // user -> followed users
}

func NewGraph() *Graph {
	return &Graph{
		followers: make(map[string]map[string]struct{}),
		following: make(map[string]map[string]struct{}),
	}
}

// Follow records the edge and reports whether it is new.
func (g *Graph) Follow(followerID, followingID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.followers[followingID][followerID]; ok {
		return false
	}
	add(g.followers, followingID, followerID)
	add(g.following, followerID, followingID)
	return true
}

// Unfollow removes the edge and reports whether it existed.
func (g *Graph) Unfollow(followerID, followingID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.followers[followingID][followerID]; !ok {
		return false
	}
	remove(g.followers, followingID, followerID)
	remove(g.following, followerID, followingID)
	return true
}

// Followers returns the followers of userID in a stable order.
func (g *Graph) Followers(userID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.followers[userID]))
	for id := range g.followers[userID] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (g *Graph) Stats(userID string) Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{Followers: len(g.followers[userID]), Following: len(g.following[userID])}
}

func add(m map[string]map[string]struct{}, k, v string) {
	set, ok := m[k]
	if !ok {
		set = make(map[string]struct{})
		m[k] = set
	}
	set[v] = struct{}{}
}

func remove(m map[string]map[string]struct{}, k, v string) {
	delete(m[k], v)
	if len(m[k]) == 0 {
		delete(m, k)
	}
}
