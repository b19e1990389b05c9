// Package eventfeed queries the external sports-data provider for live event
// directories, scores and player statistic lines.
package eventfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/fuzzy"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
)

// leaguePaths map tracker leagues onto feed URL segments.
var leaguePaths = map[models.League]string{
	models.LeagueNFL:    "football/nfl",
	models.LeagueNBA:    "basketball/nba",
	models.LeagueMLB:    "baseball/mlb",
	models.LeagueNHL:    "hockey/nhl",
	models.LeagueUFC:    "mma/ufc",
	models.LeagueSoccer: "soccer/all",
}

// ErrLeagueUnsupported marks a league the feed has no directory for.
var ErrLeagueUnsupported = errors.New("league not supported by event feed")

// Config holds the feed client settings.
type Config struct {
	BaseURL  string
	APIKey   string
	CacheTTL time.Duration
	HTTP     HTTPClientConfig
}

// Client is the scoreboard feed client. All reads are day granular and cached;
// the matcher narrows to its time window locally.
type Client struct {
	http    *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	cache   *ScoreboardCache
	logger  *logrus.Logger
}

// NewClient creates a feed client.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	return &Client{
		http:    NewRateLimitedHTTPClient(cfg.HTTP, logger),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		cache:   NewScoreboardCache(cfg.CacheTTL),
		logger:  logger,
	}
}

// EventsInWindow returns the league's events starting inside the window.
// Feed unavailability maps to models.ErrMatchTimeout so the matcher retries
// on the next cycle instead of failing bindings.
func (c *Client) EventsInWindow(ctx context.Context, league models.League, window models.TimeWindow) ([]models.EventRecord, error) {
	var out []models.EventRecord
	for day := window.From.UTC().Truncate(24 * time.Hour); !day.After(window.To); day = day.Add(24 * time.Hour) {
		records, err := c.scoreboard(ctx, league, day)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if window.Contains(rec.StartTime) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// EventByID returns the current record for one event, reading through the
// scoreboard for the day the event was last known to start on.
func (c *Client) EventByID(ctx context.Context, league models.League, eventID string, day time.Time) (models.EventRecord, error) {
	records, err := c.scoreboard(ctx, league, day)
	if err != nil {
		return models.EventRecord{}, err
	}
	for _, rec := range records {
		if rec.EventID == eventID {
			return rec, nil
		}
	}
	return models.EventRecord{}, models.ErrNotFound
}

// PlayerStat returns a player's statistic line for the event, fuzzy matching
// the player name and normalizing the statistic key. Used to settle props.
func (c *Client) PlayerStat(ctx context.Context, league models.League, eventID, player, stat string) (float64, bool, error) {
	path, ok := leaguePaths[league]
	if !ok {
		return 0, false, ErrLeagueUnsupported
	}

	url := fmt.Sprintf("%s/%s/summary?event=%s", c.baseURL, path, eventID)
	var payload summaryResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return 0, false, err
	}

	for _, line := range payload.Players {
		if fuzzy.Similarity(line.Name, player) < 0.8 {
			continue
		}
		for key, value := range line.Stats {
			if strings.EqualFold(key, stat) {
				return value, true, nil
			}
		}
	}
	return 0, false, nil
}

// scoreboard returns the day's events for a league, cache first.
func (c *Client) scoreboard(ctx context.Context, league models.League, day time.Time) ([]models.EventRecord, error) {
	path, ok := leaguePaths[league]
	if !ok {
		return nil, ErrLeagueUnsupported
	}

	if records, found := c.cache.Get(league, day); found {
		return records, nil
	}

	url := fmt.Sprintf("%s/%s/scoreboard?dates=%s", c.baseURL, path, day.UTC().Format("20060102"))
	var payload scoreboardResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	records := parseScoreboard(league, payload)
	c.cache.Set(league, day, records)

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"league": league,
			"date":   day.Format("2006-01-02"),
			"events": len(records),
		}).Debug("Fetched scoreboard")
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			metrics.RecordFeedTimeout()
			return models.ErrMatchTimeout
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Healthy probes the feed with a cheap scoreboard read. Used by the health
// server's readiness endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.scoreboard(ctx, models.LeagueNFL, time.Now().UTC())
	return err
}

// InvalidateDay drops the cached scoreboard for a league and date.
func (c *Client) InvalidateDay(league models.League, day time.Time) {
	c.cache.Invalidate(league, day)
}

// CacheStats exposes cache hit statistics for diagnostics.
func (c *Client) CacheStats() (hits, misses uint64, ratio float64) {
	return c.cache.Stats()
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}
