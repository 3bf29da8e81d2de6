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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry maps connection identifiers to connection handles. It is an
// explicit object rather than process-wide state, so unrelated subsystems
// can keep their own namespaces.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]*Connection
	logger Logger
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[string]*Connection),
		logger: GetLogger(),
	}
}

// Use returns the connection registered under id, creating and storing an
// empty placeholder when absent. Repeated calls without an intervening Store
// return the same handle. Never fails.
func (r *Registry) Use(id string) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.conns[id]; ok {
		return c
	}
	c := NewConnection(&ConnectionConfig{ID: id})
	r.conns[id] = c
	r.logger.Debug("Registered placeholder connection", "id", id)
	return c
}

// Store registers conn under id. When no record exists the connection is
// inserted and adopts id as its identifier. When a record already exists, the
// incoming record's configuration and models are deep-merged into it field by
// field, incoming leaf values winning; the existing record's identity is
// preserved.
func (r *Registry) Store(id string, conn *Connection) error {
	if conn == nil {
		return fmt.Errorf("cannot store a nil connection")
	}

	r.mu.Lock()
	existing, ok := r.conns[id]
	if !ok {
		conn.cfg.ID = id
		r.conns[id] = conn
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	return existing.mergeFrom(conn)
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// GenerateID derives a pseudo-unique connection identifier from the current
// time and a random component. Collision resistance is probabilistic only.
func (r *Registry) GenerateID() string {
	return GenerateID()
}

// GenerateID is the package-level form of Registry.GenerateID.
func GenerateID() string {
	seed := fmt.Sprintf("%d:%s", time.Now().UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
