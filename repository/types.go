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

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mongokit/mongokit/types"
)

// CrudRepository defines basic CRUD operations for a generic document type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	Find(ctx context.Context, filter bson.M) ([]*T, error)

	Count(ctx context.Context, filter bson.M) (int64, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, id any, entity *T) error

	Update(ctx context.Context, id any, entity *T) error

	Patch(ctx context.Context, id any, fields map[string]any) error

	Delete(ctx context.Context, id ...any) error
}

// PageQueryRepository defines pagination functionality for listing documents.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD and pagination and exposes the raw collection
// handle for advanced query composition.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	Collection() (*mongo.Collection, error)
}
