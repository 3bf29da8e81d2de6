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
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Factory constructs connections from configuration, applying environment
// overrides, and registers them into a registry.
type Factory struct {
	registry *Registry
	logger   Logger
}

// NewFactory returns a factory bound to the given registry. A nil registry
// gets a fresh one.
func NewFactory(registry *Registry) *Factory {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Factory{
		registry: registry,
		logger:   GetLogger(),
	}
}

// Registry returns the registry this factory stores connections into.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// CreateFromConfig builds a connection from cfg, applying environment
// overrides, and stores it in the registry under its ID.
func (f *Factory) CreateFromConfig(cfg *ConnectionConfig, opts ...ConnectionOption) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("connection configuration cannot be empty")
	}
	if cfg.URI == "" && os.Getenv("MONGO_URI") == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	f.overrideFromEnv(cfg)

	conn := NewConnection(cfg, opts...)
	if err := f.registry.Store(conn.ID(), conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Initialize connects the given connection and logs completion.
func (f *Factory) Initialize(ctx context.Context, conn *Connection) error {
	if conn == nil {
		return fmt.Errorf("connection not created")
	}
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	f.logger.Info("Database initialization completed!", "id", conn.ID())
	return nil
}

// overrideFromEnv overrides configuration values from environment variables.
func (f *Factory) overrideFromEnv(cfg *ConnectionConfig) {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		cfg.URI = uri
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		cfg.Database = db
	}
	if replicas := os.Getenv("MONGO_REPLICAS"); replicas != "" {
		parts := strings.Split(replicas, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		cfg.Replicas = out
	}
	if debug := os.Getenv("MONGO_DEBUG"); debug != "" {
		cfg.Debug = debug == "true" || debug == "1"
	}
	if maxPool := os.Getenv("MONGO_MAX_POOL_SIZE"); maxPool != "" {
		if val, err := strconv.ParseUint(maxPool, 10, 64); err == nil {
			cfg.MaxPoolSize = val
		}
	}
	if minPool := os.Getenv("MONGO_MIN_POOL_SIZE"); minPool != "" {
		if val, err := strconv.ParseUint(minPool, 10, 64); err == nil {
			cfg.MinPoolSize = val
		}
	}
	if timeout := os.Getenv("MONGO_CONNECT_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil {
			cfg.ConnectTimeout = time.Duration(val) * time.Second
		}
	}
	if schema := os.Getenv("MONGO_SCHEMA_FILE"); schema != "" {
		cfg.Schema.Path = schema
	}
}

// LoadConfig reads a connection configuration from a YAML file.
func LoadConfig(path string) (*ConnectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConnectionConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
