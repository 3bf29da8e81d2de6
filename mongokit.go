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

// Package mongokit is a convenience layer over the official MongoDB driver:
// named connection handles in an explicit registry, lazily materialized
// collection models, a connection lifecycle with pending-handler queuing,
// generic query helpers, and ObjectID utilities.
package mongokit

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mongokit/mongokit/database"
	"github.com/mongokit/mongokit/repository"
	"github.com/mongokit/mongokit/types"
)

// Service is a typed facade over one collection of a connection.
type Service[T any] interface {
	// Get returns a single document by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all documents in the collection.
	All(ctx context.Context) ([]*T, error)

	// Find returns documents matching the filter.
	Find(ctx context.Context, filter bson.M) ([]*T, error)

	// Count returns the number of documents matching the filter.
	Count(ctx context.Context, filter bson.M) (int64, error)

	// Page returns a paginated list of documents.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Save inserts one or more new documents.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts a document by its identifier.
	SaveOrUpdate(ctx context.Context, id any, model *T) error

	// Update replaces an existing document by its identifier.
	Update(ctx context.Context, id any, model *T) error

	// Patch sets individual fields on an existing document.
	Patch(ctx context.Context, id any, fields map[string]any) error

	// Delete removes documents by identifier.
	Delete(ctx context.Context, id ...any) error

	// Collection returns the raw collection handle for advanced composition.
	Collection() (*mongo.Collection, error)
}

type baseServiceImpl[T any] struct {
	conn       *database.Connection
	collection string
	once       sync.Once
	repo       repository.Repository[T]
}

// NewService returns a Service bound to one collection of the given
// connection, using the generic repository underneath.
func NewService[T any](conn *database.Connection, collection string) Service[T] {
	return &baseServiceImpl[T]{conn: conn, collection: collection}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() { s.repo = repository.NewRepository[T](s.conn, s.collection) })
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetOne(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, filter bson.M) ([]*T, error) {
	return s.baseRepo().Find(ctx, filter)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.baseRepo().Count(ctx, filter)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.baseRepo().Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, id any, model *T) error {
	return s.baseRepo().Upsert(ctx, id, model)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, model *T) error {
	return s.baseRepo().Update(ctx, id, model)
}

func (s *baseServiceImpl[T]) Patch(ctx context.Context, id any, fields map[string]any) error {
	return s.baseRepo().Patch(ctx, id, fields)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id ...any) error {
	return s.baseRepo().Delete(ctx, id...)
}

func (s *baseServiceImpl[T]) Collection() (*mongo.Collection, error) {
	return s.baseRepo().Collection()
}
