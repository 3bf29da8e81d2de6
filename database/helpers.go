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
	"errors"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// softDeleteField marks logically deleted documents; GetByID excludes them.
const softDeleteField = "deleted.isDeleted"

// GetByID finds the document with the given _id whose soft-delete flag is
// unset. A missing document is not an error: the result is nil, nil.
func (c *Connection) GetByID(ctx context.Context, collection string, id interface{}) (bson.M, error) {
	coll, err := c.Collection(collection)
	if err != nil {
		return nil, err
	}

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: softDeleteField, Value: false},
	}

	var doc bson.M
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, TranslateError(err)
	}
	return doc, nil
}

// GetMax returns the value of field from the document matching conditions
// with the largest field value, along with the document itself. Both results
// are nil when nothing matches.
func (c *Connection) GetMax(ctx context.Context, collection, field string, conditions bson.M) (interface{}, bson.M, error) {
	return c.extreme(ctx, collection, field, conditions, -1)
}

// GetMin is GetMax with ascending order.
func (c *Connection) GetMin(ctx context.Context, collection, field string, conditions bson.M) (interface{}, bson.M, error) {
	return c.extreme(ctx, collection, field, conditions, 1)
}

func (c *Connection) extreme(ctx context.Context, collection, field string, conditions bson.M, direction int) (interface{}, bson.M, error) {
	coll, err := c.Collection(collection)
	if err != nil {
		return nil, nil, err
	}

	filter := conditions
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.FindOne().SetSort(bson.D{{Key: field, Value: direction}})

	var doc bson.M
	if err := coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil
		}
		return nil, nil, TranslateError(err)
	}
	return doc[field], doc, nil
}

// CountResult is the outcome of Count. Fields is nil in plain counting mode.
type CountResult struct {
	Total  int64
	Fields map[string]float64
}

// Count has two modes. With no fields it returns the number of documents
// matching conditions. With fields it aggregates per named field across all
// matching documents: numeric values are summed, each string value counts
// +1, values of other types are ignored for that document.
func (c *Connection) Count(ctx context.Context, collection string, fields []string, conditions bson.M) (*CountResult, error) {
	coll, err := c.Collection(collection)
	if err != nil {
		return nil, err
	}

	filter := conditions
	if filter == nil {
		filter = bson.M{}
	}

	if len(fields) == 0 {
		total, err := coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, TranslateError(err)
		}
		return &CountResult{Total: total}, nil
	}

	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, TranslateError(err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, TranslateError(err)
	}

	return &CountResult{Fields: aggregateFields(docs, fields)}, nil
}

// aggregateFields folds the named fields across documents: numbers are
// summed, strings count one each, everything else is skipped.
func aggregateFields(docs []bson.M, fields []string) map[string]float64 {
	sums := make(map[string]float64, len(fields))
	for _, f := range fields {
		sums[f] = 0
	}
	for _, doc := range docs {
		for _, f := range fields {
			v, ok := doc[f]
			if !ok {
				continue
			}
			if n, ok := numericValue(v); ok {
				sums[f] += n
				continue
			}
			if _, ok := v.(string); ok {
				sums[f]++
			}
		}
	}
	return sums
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// PushReference appends value to doc's field when the field holds an array,
// otherwise replaces the field's value. The document is persisted by _id and
// the mutated document returned once the write completes.
func (c *Connection) PushReference(ctx context.Context, collection string, doc bson.M, field string, value interface{}) (bson.M, error) {
	coll, err := c.Collection(collection)
	if err != nil {
		return nil, err
	}

	id, ok := doc["_id"]
	if !ok {
		return nil, fmt.Errorf("document has no _id, cannot persist")
	}

	pushValue(doc, field, value)

	if _, err := coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc); err != nil {
		return nil, TranslateError(err)
	}
	return doc, nil
}

// pushValue mutates doc in place: append when the field is slice-typed,
// replace otherwise.
func pushValue(doc bson.M, field string, value interface{}) {
	switch existing := doc[field].(type) {
	case bson.A:
		doc[field] = append(existing, value)
	case []interface{}:
		doc[field] = append(existing, value)
	case nil:
		doc[field] = value
	default:
		rv := reflect.ValueOf(existing)
		if rv.Kind() != reflect.Slice {
			doc[field] = value
			return
		}
		out := make(bson.A, 0, rv.Len()+1)
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
		doc[field] = append(out, value)
	}
}
