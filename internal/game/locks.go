package game

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// playerLocks serializes mutations per player without a lock per player
type playerLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *playerLocks) lock(playerID string) func() {
	h := fnv.New32a()
	h.Write([]byte(playerID))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
