// Package kvstore provides the client for the remote key-value store
// backing the response cache.
//
// The client owns exactly one connection for the process lifetime and is
// deliberately fail-open: caching is an optimization, never a correctness
// dependency. Operational errors are logged and swallowed; a lost
// connection degrades the client to a no-op instead of propagating
// failures into request handling.
package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pressgate/blog-gateway/pkg/logging"
)

// Default connection and operation parameters.
const (
	// DefaultMaxRetries is the retry ceiling for one connect/reconnect chain.
	DefaultMaxRetries = 10

	// DefaultBackoffStep is multiplied by the retry count to compute the
	// backoff delay.
	DefaultBackoffStep = 100 * time.Millisecond

	// DefaultMaxBackoff caps the backoff delay.
	DefaultMaxBackoff = 3 * time.Second

	// DefaultOpTimeout bounds every store operation so a hung store
	// degrades to a miss instead of delaying the request.
	DefaultOpTimeout = 250 * time.Millisecond
)

// Config holds the client configuration.
type Config struct {
	// Addr is the store address (host:port).
	Addr string

	// DB selects the logical database.
	DB int

	// MaxRetries is the retry ceiling per connect/reconnect chain.
	MaxRetries int

	// BackoffStep and MaxBackoff control the backoff delay:
	// delay = min(retry * BackoffStep, MaxBackoff).
	BackoffStep time.Duration
	MaxBackoff  time.Duration

	// OpTimeout bounds individual store operations.
	OpTimeout time.Duration
}

// DefaultConfig returns a safe default configuration for the given address.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:        addr,
		MaxRetries:  DefaultMaxRetries,
		BackoffStep: DefaultBackoffStep,
		MaxBackoff:  DefaultMaxBackoff,
		OpTimeout:   DefaultOpTimeout,
	}
}

// Client is the process-wide key-value store client.
//
// All operations are safe for concurrent use. Connectivity can change
// between a state check and an operation (reconnection runs in the
// background), so every operation is internally guarded and may silently
// no-op; callers must not rely on a pre-flight State check.
type Client struct {
	redis  *redis.Client
	cfg    Config
	logger zerolog.Logger

	mu    sync.Mutex
	state ConnectionState

	// pending completes in-flight background reconnection, for tests.
	pending sync.WaitGroup
}

// New creates a client in the Disconnected state. Call Connect to
// establish the connection.
func New(cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = DefaultBackoffStep
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = DefaultOpTimeout
	}

	return &Client{
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.Addr,
			DB:   cfg.DB,
			// The state machine owns retries; disable the driver's own.
			MaxRetries: -1,
		}),
		cfg:    cfg,
		logger: logging.NewLogger("kvstore"),
		state:  StateDisconnected,
	}
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setState applies a transition if it is legal and returns whether it
// was applied.
func (c *Client) setState(next ConnectionState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transitionLocked(next)
}

// compareAndSwapState applies the transition only when the current
// state is exactly from. Distinguishes "I moved the state" from "it was
// already there", which setState does not.
func (c *Client) compareAndSwapState(from, next ConnectionState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return false
	}
	return c.transitionLocked(next)
}

func (c *Client) transitionLocked(next ConnectionState) bool {
	if c.state == next {
		return true
	}
	if !c.state.canTransition(next) {
		return false
	}
	StateTransitions.WithLabelValues(c.state.String(), next.String()).Inc()
	c.logger.Info().
		Str("from", c.state.String()).
		Str("to", next.String()).
		Msg("Connection state changed")
	c.state = next
	return true
}

// backoff computes the delay before the given retry (1-based):
// min(retry * BackoffStep, MaxBackoff).
func (c *Client) backoff(retry int) time.Duration {
	d := time.Duration(retry) * c.cfg.BackoffStep
	if d > c.cfg.MaxBackoff {
		d = c.cfg.MaxBackoff
	}
	return d
}

// Connect attempts the initial connection, applying capped backoff up to
// the retry ceiling. On exhaustion the client enters Failed and the
// returned error is advisory only: the caller is expected to log it and
// continue in degraded (uncached) mode.
func (c *Client) Connect(ctx context.Context) error {
	if !c.compareAndSwapState(StateDisconnected, StateConnecting) {
		return nil
	}
	return c.connectLoop(ctx, StateConnecting)
}

// connectLoop drives the ping/backoff cycle for Connecting and
// Reconnecting. It ends in Ready or Failed.
func (c *Client) connectLoop(ctx context.Context, via ConnectionState) error {
	var lastErr error

	for retry := 1; retry <= c.cfg.MaxRetries; retry++ {
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
		err := c.redis.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			c.setState(StateReady)
			c.logger.Info().Str("addr", c.cfg.Addr).Msg("Connected to key-value store")
			return nil
		}

		lastErr = err
		ConnectRetries.Inc()

		delay := c.backoff(retry)
		c.logger.Warn().
			Err(err).
			Int("retry", retry).
			Dur("backoff", delay).
			Msg("Key-value store connection attempt failed")

		if retry >= c.cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			c.setState(StateFailed)
			return ctx.Err()
		case <-time.After(delay):
		}
		c.setState(via)
	}

	c.setState(StateFailed)
	c.logger.Error().
		Err(lastErr).
		Int("max_retries", c.cfg.MaxRetries).
		Msg("Key-value store unreachable, caching disabled")
	return lastErr
}

// noteTransportError reacts to a transport error observed during an
// operation. The first error on a Ready connection starts a single
// background reconnect loop; the strict swap from Ready keeps
// concurrent failing operations from each spawning one. A later error
// cannot re-enter here until the running loop has restored Ready.
func (c *Client) noteTransportError() {
	if !c.compareAndSwapState(StateReady, StateReconnecting) {
		return
	}
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		_ = c.connectLoop(context.Background(), StateReconnecting)
	}()
}

// ready reports whether an operation should proceed.
func (c *Client) ready(op string) bool {
	if c.State() == StateReady {
		return true
	}
	OpSkipped.WithLabelValues(op).Inc()
	return false
}

// Get returns the value for key, or nil both on a miss and whenever the
// store is unavailable. Callers cannot distinguish the two: the fallback
// (recompute from the source of truth) is identical either way.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if !c.ready("get") {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	data, err := c.redis.Get(opCtx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		OpErrors.WithLabelValues("get").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("Key-value store get failed")
		c.noteTransportError()
		return nil
	}
	return data
}

// Set stores value under key with the given TTL. Returns false silently
// when disconnected or on transport error; never raises.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if !c.ready("set") {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	if err := c.redis.Set(opCtx, key, value, ttl).Err(); err != nil {
		OpErrors.WithLabelValues("set").Inc()
		c.logger.Warn().Err(err).Str("key", key).Msg("Key-value store set failed")
		c.noteTransportError()
		return false
	}
	return true
}

// Delete removes the given keys. Fail-silent like Set.
func (c *Client) Delete(ctx context.Context, keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	if !c.ready("delete") {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	if err := c.redis.Del(opCtx, keys...).Err(); err != nil {
		OpErrors.WithLabelValues("delete").Inc()
		c.logger.Warn().Err(err).Msg("Key-value store delete failed")
		c.noteTransportError()
		return false
	}
	return true
}

// DeleteByPattern removes all keys matching the glob pattern using
// cursor-based scans. Fail-silent like Set.
func (c *Client) DeleteByPattern(ctx context.Context, pattern string) bool {
	if !c.ready("delete_pattern") {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := c.redis.Scan(opCtx, cursor, pattern, 100).Result()
		if err != nil {
			OpErrors.WithLabelValues("delete_pattern").Inc()
			c.logger.Warn().Err(err).Str("pattern", pattern).Msg("Key-value store scan failed")
			c.noteTransportError()
			return false
		}
		if len(keys) > 0 {
			if err := c.redis.Del(opCtx, keys...).Err(); err != nil {
				OpErrors.WithLabelValues("delete_pattern").Inc()
				c.logger.Warn().Err(err).Str("pattern", pattern).Msg("Key-value store delete failed")
				c.noteTransportError()
				return false
			}
		}
		if next == 0 {
			return true
		}
		cursor = next
	}
}

// FlushAll removes every key in the selected database. Fail-silent like Set.
func (c *Client) FlushAll(ctx context.Context) bool {
	if !c.ready("flush") {
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	if err := c.redis.FlushDB(opCtx).Err(); err != nil {
		OpErrors.WithLabelValues("flush").Inc()
		c.logger.Warn().Err(err).Msg("Key-value store flush failed")
		c.noteTransportError()
		return false
	}
	return true
}

// Wait blocks until any background reconnection attempt has settled.
// Intended for tests.
func (c *Client) Wait() {
	c.pending.Wait()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.redis.Close()
}
