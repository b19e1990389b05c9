package matcher

import (
	"sync"

	"github.com/google/uuid"
)

const lockShards = 64

// BetLocks serializes refresh work per tracked bet while letting unrelated
// bets proceed concurrently. Shard count is fixed; two bets hashing to the
// same shard merely contend, never deadlock.
type BetLocks struct {
	shards [lockShards]sync.Mutex
}

// NewBetLocks creates the shard set.
func NewBetLocks() *BetLocks {
	return &BetLocks{}
}

// Lock acquires the shard for a bet and returns its unlock function.
func (l *BetLocks) Lock(betID uuid.UUID) func() {
	shard := &l.shards[shardIndex(betID)]
	shard.Lock()
	return shard.Unlock
}

func shardIndex(id uuid.UUID) int {
	// uuid bytes are uniformly distributed; any byte works as a shard key
	return int(id[0]) % lockShards
}
