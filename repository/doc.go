// Package repository provides a generic repository abstraction over
// materialized MongoDB collections for CRUD operations, querying, counting,
// upserts, and pagination.
package repository
