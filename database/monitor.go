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

	"github.com/fatih/color"
	"go.mongodb.org/mongo-driver/event"
)

var (
	traceStarted   = color.New(color.FgCyan).SprintFunc()
	traceSucceeded = color.New(color.FgGreen).SprintFunc()
	traceFailed    = color.New(color.FgRed).SprintFunc()
)

// commandMonitor builds a per-client command monitor that traces every
// command when the connection's debug flag is set. The flag is scoped to
// this connection; other connections in the process are unaffected.
func (c *Connection) commandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, e *event.CommandStartedEvent) {
			if !c.debug.Load() {
				return
			}
			c.logger.Debug(traceStarted("MongoDB command started"),
				"id", c.ID(),
				"command", e.CommandName,
				"database", e.DatabaseName,
				"request_id", e.RequestID,
			)
		},
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			if !c.debug.Load() {
				return
			}
			c.logger.Debug(traceSucceeded("MongoDB command succeeded"),
				"id", c.ID(),
				"command", e.CommandName,
				"duration", e.Duration,
				"request_id", e.RequestID,
			)
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			if !c.debug.Load() {
				return
			}
			c.logger.Warn(traceFailed("MongoDB command failed"),
				"id", c.ID(),
				"command", e.CommandName,
				"duration", e.Duration,
				"error", e.Failure,
				"request_id", e.RequestID,
			)
		},
	}
}

// serverMonitor observes driver-level heartbeats. Heartbeats only toggle the
// connected flag between CONNECTED and DISCONNECTED; reconnection itself is
// the driver's behavior, observed passively here.
func (c *Connection) serverMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			c.handleHeartbeat(true)
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			c.logger.Warn("Server heartbeat failed", "id", c.ID(), "error", e.Failure)
			c.handleHeartbeat(false)
		},
	}
}
