/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"dario.cat/mergo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// link is the live session to the underlying store. It is abstracted behind
// an interface so the lifecycle can be exercised without a running server.
type link interface {
	Ping(ctx context.Context) error
	Database(name string) *mongo.Database
	EnsureIndexes(ctx context.Context, dbName string, models []*Model) error
	Disconnect(ctx context.Context) error
}

type dialFunc func(ctx context.Context, c *Connection) (link, error)

// Connection is a named handle onto one MongoDB deployment. It owns the
// underlying link exclusively, tracks lifecycle state, queues handlers
// awaiting the next connect or connect-error event, and holds the collection
// models produced by schema materialization.
//
// Handlers registered via OnConnected and callers blocked in Connect observe
// the outcome of a connect attempt in registration order (FIFO), and each
// handler fires exactly once per attempt.
type Connection struct {
	cfg    *ConnectionConfig
	logger Logger

	mu        sync.Mutex
	state     ConnState
	link      link
	db        *mongo.Database
	models    map[string]*Model
	pending   []Handler
	inflight  chan struct{}
	lastErr   error
	connected atomic.Bool
	debug     atomic.Bool

	builder SchemaBuilder
	dial    dialFunc
}

// ConnectionOption customizes a Connection at construction time.
type ConnectionOption func(c *Connection)

// WithSchemaBuilder replaces the default YAML schema builder.
func WithSchemaBuilder(b SchemaBuilder) ConnectionOption {
	return func(c *Connection) {
		if b != nil {
			c.builder = b
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l Logger) ConnectionOption {
	return func(c *Connection) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewConnection creates a connection handle in the UNINITIALIZED state with
// an empty model set. An ID is generated when the config does not carry one.
func NewConnection(cfg *ConnectionConfig, opts ...ConnectionOption) *Connection {
	if cfg == nil {
		cfg = DefaultConnectionConfig()
	}
	if cfg.ID == "" {
		cfg.ID = GenerateID()
	}

	c := &Connection{
		cfg:    cfg,
		logger: GetLogger(),
		state:  StateUninitialized,
		models: make(map[string]*Model),
		dial:   dialMongo,
	}
	c.debug.Store(cfg.Debug)
	for _, opt := range opts {
		opt(c)
	}
	if c.builder == nil {
		c.builder = NewSchemaBuilder(c.logger)
	}
	return c
}

// ID returns the registry identifier of this connection. Immutable.
func (c *Connection) ID() string {
	return c.cfg.ID
}

// Config returns the connection configuration.
func (c *Connection) Config() *ConnectionConfig {
	return c.cfg
}

// State returns the current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the link is currently usable.
func (c *Connection) IsConnected() bool {
	return c.connected.Load()
}

// SetDebug toggles verbose command tracing for this connection only.
func (c *Connection) SetDebug(flag bool) {
	c.debug.Store(flag)
}

// Debug reports whether command tracing is enabled.
func (c *Connection) Debug() bool {
	return c.debug.Load()
}

// Connect brings the connection to the CONNECTED state: it materializes
// collection models from the schema source if none exist yet, then opens the
// underlying link and verifies it with a ping.
//
// Calling Connect on an already connected handle returns nil immediately.
// Concurrent calls coalesce onto the in-flight attempt and all observe its
// outcome. On completion every pending handler is invoked exactly once, in
// registration order, with the attempt's error (nil on success); the queue is
// cleared atomically with the dispatch.
//
// A Disconnect issued while an attempt is in flight wins: the attempt is
// discarded, any link it opened is closed, and ErrConnectionClosed returned.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == StateClosed:
		c.mu.Unlock()
		return ErrConnectionClosed
	case c.state == StateConnected:
		c.mu.Unlock()
		return nil
	case c.inflight != nil:
		done := c.inflight
		c.mu.Unlock()
		return c.awaitAttempt(ctx, done)
	}

	done := make(chan struct{})
	c.inflight = done
	c.mu.Unlock()

	err := c.establish(ctx)

	c.mu.Lock()
	c.lastErr = err
	c.inflight = nil
	handlers := c.pending
	c.pending = nil
	c.mu.Unlock()
	close(done)

	for _, h := range handlers {
		h(c, err)
	}
	return err
}

func (c *Connection) awaitAttempt(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected {
		return nil
	}
	return c.lastErr
}

// establish runs one connect attempt as an explicit two-phase sequence:
// ensure models are materialized, then open and verify the link.
func (c *Connection) establish(ctx context.Context) error {
	if err := c.ensureModels(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrConnectionClosed
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	lk, err := c.dial(ctx, c)
	if err != nil {
		c.logger.Error("Failed to open link", "id", c.ID(), "error", err)
		c.markDisconnected()
		return err
	}

	pingTimeout := c.cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = DefaultConnectionConfig().PingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = lk.Ping(pingCtx)
	cancel()
	if err != nil {
		_ = lk.Disconnect(context.Background())
		c.logger.Error("Link verification failed", "id", c.ID(), "error", err)
		c.markDisconnected()
		return err
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		// a concurrent Disconnect won; the attempt's link must not survive it
		_ = lk.Disconnect(context.Background())
		return ErrConnectionClosed
	}
	old := c.link
	c.link = lk
	c.db = lk.Database(c.cfg.Database)
	models := c.modelsLocked()
	c.connected.Store(true)
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	if old != nil {
		// stale link from a previous attempt
		_ = old.Disconnect(context.Background())
	}

	if err := lk.EnsureIndexes(ctx, c.cfg.Database, models); err != nil {
		c.logger.Warn("Failed to ensure declared indexes", "id", c.ID(), "error", err)
	}

	c.logger.Info("Database connected successfully:", "id", c.ID(), "database", c.cfg.Database)
	return nil
}

// ensureModels materializes collection models when none exist. The result is
// merged into the existing model set per collection name, incoming entries
// overriding same-named ones; unrelated entries are preserved.
func (c *Connection) ensureModels(ctx context.Context) error {
	c.mu.Lock()
	if len(c.models) > 0 {
		c.mu.Unlock()
		return nil
	}
	c.setStateLocked(StateSchemaBuilding)
	builder := c.builder
	source := c.cfg.Schema
	c.mu.Unlock()

	models, err := builder.Build(ctx, source)
	if err != nil {
		c.logger.Error("Schema materialization failed", "id", c.ID(), "error", err)
		c.mu.Lock()
		c.setStateLocked(StateUninitialized)
		c.mu.Unlock()
		return fmt.Errorf("schema build: %w", err)
	}

	c.mu.Lock()
	for name, m := range models {
		c.models[name] = m
	}
	c.setStateLocked(StateModelReady)
	c.mu.Unlock()
	return nil
}

func (c *Connection) markDisconnected() {
	c.mu.Lock()
	c.connected.Store(false)
	if c.state != StateClosed {
		c.setStateLocked(StateDisconnected)
	}
	c.mu.Unlock()
}

// OnConnected registers a handler for the next connect or connect-error
// event. When the connection is already live and no handlers are pending, fn
// is invoked immediately with a nil error.
func (c *Connection) OnConnected(fn Handler) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	if c.state == StateConnected && c.inflight == nil && len(c.pending) == 0 {
		c.mu.Unlock()
		fn(c, nil)
		return
	}
	c.pending = append(c.pending, fn)
	c.mu.Unlock()
}

// Disconnect closes the underlying link and moves the connection to CLOSED.
// Errors from the driver-level close are logged and returned.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	lk := c.link
	c.link = nil
	c.db = nil
	c.connected.Store(false)
	c.setStateLocked(StateClosed)
	c.mu.Unlock()

	if lk == nil {
		return nil
	}
	if err := lk.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to close link", "id", c.ID(), "error", err)
		return err
	}
	c.logger.Info("Database connection closed", "id", c.ID())
	return nil
}

// Ping verifies the link round-trip.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.Lock()
	lk := c.link
	c.mu.Unlock()
	if lk == nil {
		return ErrNotConnected
	}
	return lk.Ping(ctx)
}

// HealthCheck pings the deployment and reports the connection's health.
func (c *Connection) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Connected:     c.IsConnected(),
		State:         c.State().String(),
		LastCheckTime: start,
	}

	err := c.Ping(ctx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.Healthy = false
		status.LastError = err.Error()
		return status
	}
	status.Healthy = true
	return status
}

// Collection returns the live handle for a materialized collection. It fails
// with ErrModelNotReady before schema materialization and ErrNotConnected
// before the link opens.
func (c *Connection) Collection(name string) (*mongo.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.models[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotReady, name)
	}
	if c.db == nil {
		return nil, ErrNotConnected
	}
	return c.db.Collection(name), nil
}

// Model returns the materialized model for a collection name, or nil.
func (c *Connection) Model(name string) *Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.models[name]
}

// ModelNames lists the materialized collection names.
func (c *Connection) ModelNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	return names
}

func (c *Connection) modelsLocked() []*Model {
	out := make([]*Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	return out
}

func (c *Connection) setStateLocked(next ConnState) {
	if c.state == next {
		return
	}
	c.logger.Debug("Connection state changed", "id", c.cfg.ID, "from", c.state.String(), "to", next.String())
	c.state = next
}

// handleHeartbeat reacts to driver-level server heartbeats. It only toggles
// the connected flag between CONNECTED and DISCONNECTED; pending handlers are
// never drained here.
func (c *Connection) handleHeartbeat(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateConnected:
		if !ok {
			c.connected.Store(false)
			c.setStateLocked(StateDisconnected)
		}
	case StateDisconnected:
		if ok && c.link != nil {
			c.connected.Store(true)
			c.setStateLocked(StateConnected)
		}
	}
}

// mergeFrom folds another record's configuration and models into this one,
// incoming leaf values overriding existing ones. The receiver's ID never
// changes. The incoming record must not be in concurrent use.
func (c *Connection) mergeFrom(other *Connection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.cfg.ID
	if err := mergo.Merge(c.cfg, *other.cfg, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge connection config: %w", err)
	}
	c.cfg.ID = id

	for name, m := range other.models {
		c.models[name] = m
	}
	c.debug.Store(c.cfg.Debug)
	return nil
}

type mongoLink struct {
	client *mongo.Client
}

func dialMongo(ctx context.Context, c *Connection) (link, error) {
	defaults := DefaultConnectionConfig()
	connectTimeout := c.cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaults.ConnectTimeout
	}
	maxPool := c.cfg.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaults.MaxPoolSize
	}

	opts := options.Client().
		ApplyURI(c.cfg.AddressString()).
		SetConnectTimeout(connectTimeout).
		SetMaxPoolSize(maxPool).
		SetServerMonitor(c.serverMonitor()).
		SetMonitor(c.commandMonitor())
	if c.cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(c.cfg.MinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &mongoLink{client: client}, nil
}

func (l *mongoLink) Ping(ctx context.Context) error {
	return l.client.Ping(ctx, readpref.Primary())
}

func (l *mongoLink) Database(name string) *mongo.Database {
	return l.client.Database(name)
}

func (l *mongoLink) EnsureIndexes(ctx context.Context, dbName string, models []*Model) error {
	db := l.client.Database(dbName)
	for _, m := range models {
		indexes := m.IndexModels()
		if len(indexes) == 0 {
			continue
		}
		if _, err := db.Collection(m.Name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("collection %s: %w", m.Name, err)
		}
	}
	return nil
}

func (l *mongoLink) Disconnect(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}
