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
	"strings"
	"time"
)

// ConnState is the lifecycle state of a Connection.
type ConnState int32

const (
	StateUninitialized ConnState = iota
	StateSchemaBuilding
	StateModelReady
	StateConnecting
	StateConnected
	StateDisconnected
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateSchemaBuilding:
		return "SCHEMA_BUILDING"
	case StateModelReady:
		return "MODEL_READY"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnected:
		return "DISCONNECTED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Handler is a callback waiting for the next connect or connect-error event.
// On success err is nil; on failure err carries the link error.
type Handler func(c *Connection, err error)

// ConnectionConfig describes a named connection to a MongoDB deployment.
// URI is the base connection string; Replicas are extra host:port addresses
// appended to it comma-joined before the link is opened.
type ConnectionConfig struct {
	ID             string        `yaml:"id" json:"id"`
	URI            string        `yaml:"uri" json:"uri"`
	Database       string        `yaml:"database" json:"database"`
	Replicas       []string      `yaml:"replicas" json:"replicas"`
	Debug          bool          `yaml:"debug" json:"debug"`
	Schema         SchemaSource  `yaml:"schema" json:"schema"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" json:"max_pool_size"`
	MinPoolSize    uint64        `yaml:"min_pool_size" json:"min_pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	PingTimeout    time.Duration `yaml:"ping_timeout" json:"ping_timeout"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxPoolSize:    100,
		MinPoolSize:    0,
		ConnectTimeout: time.Second * 10,
		PingTimeout:    time.Second * 5,
	}
}

// AddressString assembles the full connection string: the base URI with any
// replica addresses appended as a comma-joined suffix.
func (c *ConnectionConfig) AddressString() string {
	if len(c.Replicas) == 0 {
		return c.URI
	}
	return c.URI + "," + strings.Join(c.Replicas, ",")
}

// HealthStatus holds the result of a health check against the deployment.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	State         string        `json:"state"`
	ResponseTime  time.Duration `json:"response_time"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}
