package eventfeed

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/slip-tracker/internal/models"
)

// ScoreboardCache holds scoreboard snapshots per league and date so a refresh
// pass over many tracked bets hits the feed once per league, not once per bet.
type ScoreboardCache struct {
	cache *cache.Cache
	ttl   time.Duration

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewScoreboardCache creates a cache with the given snapshot TTL.
func NewScoreboardCache(ttl time.Duration) *ScoreboardCache {
	return &ScoreboardCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func scoreboardKey(league models.League, day time.Time) string {
	return fmt.Sprintf("%s:%s", league, day.UTC().Format("20060102"))
}

// Get returns the cached scoreboard for the league and date, if fresh.
func (sc *ScoreboardCache) Get(league models.League, day time.Time) ([]models.EventRecord, bool) {
	v, found := sc.cache.Get(scoreboardKey(league, day))

	sc.mu.Lock()
	if found {
		sc.hitCount++
	} else {
		sc.missCount++
	}
	sc.mu.Unlock()

	if !found {
		return nil, false
	}
	records, ok := v.([]models.EventRecord)
	return records, ok
}

// Set stores a scoreboard snapshot.
func (sc *ScoreboardCache) Set(league models.League, day time.Time, records []models.EventRecord) {
	sc.cache.Set(scoreboardKey(league, day), records, sc.ttl)
}

// Invalidate drops the snapshot for one league and date, forcing the next read
// back to the feed. The stream handler calls this on score deltas.
func (sc *ScoreboardCache) Invalidate(league models.League, day time.Time) {
	sc.cache.Delete(scoreboardKey(league, day))
}

// Clear flushes the cache.
func (sc *ScoreboardCache) Clear() {
	sc.cache.Flush()
	sc.mu.Lock()
	sc.hitCount, sc.missCount = 0, 0
	sc.mu.Unlock()
}

// Stats returns hit and miss counts and the hit ratio.
func (sc *ScoreboardCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	hits, misses = sc.hitCount, sc.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return hits, misses, ratio
}
