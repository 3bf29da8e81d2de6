// Package database provides named connection management for MongoDB: an
// explicit connection registry, a lifecycle state machine with
// pending-handler queuing, lazy schema materialization into collection
// models, generic query helpers, configuration, logging, and health checks
// built on top of the official MongoDB driver.
package database
