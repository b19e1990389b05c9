package eventfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/models"
)

// ScoreDelta is one incremental score update pushed by the feed between
// scoreboard polls.
type ScoreDelta struct {
	EventID string        `json:"event_id"`
	League  models.League `json:"league"`
	Scores  []float64     `json:"scores"`
	Status  string        `json:"status"`
}

// DeltaHandler consumes score deltas from the stream.
type DeltaHandler func(delta ScoreDelta)

// ReconnectConfig controls stream reconnection backoff.
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns the default reconnection policy.
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

type subscribeMessage struct {
	Op      string   `json:"op"`
	APIKey  string   `json:"apiKey,omitempty"`
	Leagues []string `json:"leagues"`
}

type streamMessage struct {
	Op    string     `json:"op"` // delta | heartbeat | status
	Delta ScoreDelta `json:"delta,omitempty"`
}

// ScoreStream maintains a websocket subscription for live score deltas and
// invalidates the scoreboard cache so the next matcher pass reads fresh data.
type ScoreStream struct {
	url       string
	apiKey    string
	leagues   []models.League
	reconnect ReconnectConfig
	handler   DeltaHandler
	logger    *logrus.Logger

	mu          sync.RWMutex
	conn        *websocket.Conn
	isConnected bool
}

// NewScoreStream creates a stream client. The handler is invoked on the read
// goroutine and must not block.
func NewScoreStream(url, apiKey string, leagues []models.League, handler DeltaHandler, logger *logrus.Logger) *ScoreStream {
	return &ScoreStream{
		url:       url,
		apiKey:    apiKey,
		leagues:   leagues,
		reconnect: DefaultReconnectConfig(),
		handler:   handler,
		logger:    logger,
	}
}

// Run connects, subscribes and reads deltas until the context is cancelled or
// the reconnection budget is exhausted.
func (s *ScoreStream) Run(ctx context.Context) error {
	backoff := s.reconnect.InitialBackoff
	retries := 0

	for {
		if err := s.connectAndRead(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			retries++
			if retries > s.reconnect.MaxRetries {
				return fmt.Errorf("score stream: reconnect budget exhausted: %w", err)
			}
			if s.logger != nil {
				s.logger.WithFields(logrus.Fields{
					"retry":   retries,
					"backoff": backoff,
					"error":   err,
				}).Warn("Score stream disconnected, reconnecting")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * s.reconnect.BackoffMultiplier)
			if backoff > s.reconnect.MaxBackoff {
				backoff = s.reconnect.MaxBackoff
			}
			continue
		}
		return nil
	}
}

func (s *ScoreStream) connectAndRead(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.isConnected = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isConnected = false
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	leagues := make([]string, len(s.leagues))
	for i, l := range s.leagues {
		leagues[i] = string(l)
	}
	sub := subscribeMessage{Op: "subscribe", APIKey: s.apiKey, Leagues: leagues}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// close the socket when the context ends so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if s.logger != nil {
				s.logger.WithField("error", err).Warn("Malformed stream message dropped")
			}
			continue
		}
		if msg.Op != "delta" {
			continue
		}
		if s.handler != nil {
			s.handler(msg.Delta)
		}
	}
}

// IsConnected reports whether the stream currently holds a live connection.
func (s *ScoreStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}
