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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mongokit/mongokit/database"
	"github.com/mongokit/mongokit/types"
)

type baseRepositoryImpl[T any] struct {
	conn       *database.Connection
	collection string
}

// NewRepository returns a generic repository over one materialized collection
// of the given connection. The collection handle is resolved per call, so the
// repository may be constructed before the connection is established.
func NewRepository[T any](conn *database.Connection, collection string) Repository[T] {
	return &baseRepositoryImpl[T]{conn: conn, collection: collection}
}

func (r *baseRepositoryImpl[T]) Collection() (*mongo.Collection, error) {
	return r.conn.Collection(r.collection)
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	coll, err := r.Collection()
	if err != nil {
		return nil, err
	}

	var entity T
	err = coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&entity)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.Find(ctx, bson.M{})
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, filter bson.M) ([]*T, error) {
	coll, err := r.Collection()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = bson.M{}
	}

	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer cur.Close(ctx)

	var entities []*T
	if err := cur.All(ctx, &entities); err != nil {
		return nil, database.TranslateError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	coll, err := r.Collection()
	if err != nil {
		return 0, err
	}
	if filter == nil {
		filter = bson.M{}
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, database.TranslateError(err)
	}
	return total, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	coll, err := r.Collection()
	if err != nil {
		return err
	}

	docs := make([]interface{}, len(entity))
	for i, e := range entity {
		docs[i] = e
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return database.TranslateError(err)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, id any, entity *T) error {
	coll, err := r.Collection()
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, entity, opts); err != nil {
		return database.TranslateError(err)
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id any, entity *T) error {
	coll, err := r.Collection()
	if err != nil {
		return err
	}

	res, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, entity)
	if err != nil {
		return database.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return database.ErrKeyNotFound
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Patch(ctx context.Context, id any, fields map[string]any) error {
	coll, err := r.Collection()
	if err != nil {
		return err
	}

	update := bson.M{}
	for k, v := range fields {
		update[k] = v
	}
	res, err := coll.UpdateByID(ctx, id, bson.M{"$set": update})
	if err != nil {
		return database.TranslateError(err)
	}
	if res.MatchedCount == 0 {
		return database.ErrKeyNotFound
	}
	return nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id ...any) error {
	coll, err := r.Collection()
	if err != nil {
		return err
	}

	_, err = coll.DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.M{"$in": id}}})
	return database.TranslateError(err)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	coll, err := r.Collection()
	if err != nil {
		return nil, err
	}

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	filter := pageRequest.GetFilter()

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	if total == 0 {
		return pagination, nil
	}

	opts := options.Find().
		SetSkip(int64(pageRequest.GetOffset())).
		SetLimit(int64(pageRequest.GetPageSize()))
	if sort := pageRequest.GetSort(); len(sort) > 0 {
		opts.SetSort(sort)
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer cur.Close(ctx)

	var entities []*T
	if err := cur.All(ctx, &entities); err != nil {
		return nil, database.TranslateError(err)
	}

	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}
