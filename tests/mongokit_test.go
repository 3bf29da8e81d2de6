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

package tests

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mongokit/mongokit"
	"github.com/mongokit/mongokit/database"
)

type SystemConfig struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConfigKey   string             `bson:"config_key" json:"config_key"`
	ConfigValue string             `bson:"config_value" json:"config_value"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// connect dials the database named by MONGOKIT_TEST_URI, or skips.
func connect(t *testing.T) *database.Connection {
	uri := os.Getenv("MONGOKIT_TEST_URI")
	if uri == "" {
		t.Skip("MONGOKIT_TEST_URI not set")
	}

	cfg := database.DefaultConnectionConfig()
	cfg.URI = uri
	cfg.Database = "mongokit_test"
	cfg.Debug = true
	cfg.Schema.Definition = map[string]database.CollectionSpec{
		"system_config": {
			Fields: map[string]string{
				"config_key":   "string",
				"config_value": "string",
			},
			Indexes: []database.IndexSpec{
				{Fields: []string{"config_key"}, Unique: true},
			},
		},
	}

	conn := database.NewConnection(cfg)
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("connect error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Disconnect(context.Background()) })
	return conn
}

func TestQuery(t *testing.T) {
	conn := connect(t)

	svc := mongokit.NewService[SystemConfig](conn, "system_config")
	ctx := context.Background()

	key := "greeting-" + database.GenerateID()[:8]
	doc := &SystemConfig{
		ID:          primitive.NewObjectID(),
		ConfigKey:   key,
		ConfigValue: "hello",
		CreatedAt:   time.Now(),
	}
	if err := svc.Save(ctx, doc); err != nil {
		t.Fatalf("save error: %v", err)
	}
	defer func() { _ = svc.Delete(ctx, doc.ID) }()

	configs, err := svc.Find(ctx, map[string]interface{}{"config_key": key})
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	t.Logf("search with %d rows", len(configs))
	if len(configs) != 1 || configs[0].ConfigValue != "hello" {
		t.Fatalf("unexpected result: %+v", configs)
	}

	got, err := svc.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ConfigKey != key {
		t.Fatalf("got key %q, want %q", got.ConfigKey, key)
	}
}

func TestQueryHelpers(t *testing.T) {
	conn := connect(t)
	ctx := context.Background()

	coll, err := conn.Collection("system_config")
	if err != nil {
		t.Fatalf("collection error: %v", err)
	}

	marker := "helpers-" + database.GenerateID()[:8]
	live := bson.M{
		"_id":          primitive.NewObjectID(),
		"config_key":   marker,
		"config_value": "live",
		"weight":       int32(3),
		"refs":         bson.A{"r0"},
		"deleted":      bson.M{"isDeleted": false},
	}
	tombstone := bson.M{
		"_id":          primitive.NewObjectID(),
		"config_key":   marker,
		"config_value": "gone",
		"weight":       int32(7),
		"deleted":      bson.M{"isDeleted": true},
	}
	if _, err := coll.InsertMany(ctx, []interface{}{live, tombstone}); err != nil {
		t.Fatalf("insert error: %v", err)
	}
	defer func() { _, _ = coll.DeleteMany(ctx, bson.M{"config_key": marker}) }()

	got, err := conn.GetByID(ctx, "system_config", live["_id"])
	if err != nil {
		t.Fatalf("get by id error: %v", err)
	}
	if got == nil || got["config_value"] != "live" {
		t.Fatalf("get by id = %v, want the live document", got)
	}

	got, err = conn.GetByID(ctx, "system_config", tombstone["_id"])
	if err != nil {
		t.Fatalf("get by id error: %v", err)
	}
	if got != nil {
		t.Fatalf("soft-deleted document surfaced: %v", got)
	}

	plain, err := conn.Count(ctx, "system_config", nil, bson.M{"config_key": marker})
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if plain.Total != 2 {
		t.Fatalf("count = %d, want 2", plain.Total)
	}

	byField, err := conn.Count(ctx, "system_config", []string{"weight", "config_value"}, bson.M{"config_key": marker})
	if err != nil {
		t.Fatalf("count by field error: %v", err)
	}
	if byField.Fields["weight"] != 10 {
		t.Fatalf("weight aggregate = %v, want 10", byField.Fields["weight"])
	}
	if byField.Fields["config_value"] != 2 {
		t.Fatalf("config_value aggregate = %v, want 2", byField.Fields["config_value"])
	}

	value, maxDoc, err := conn.GetMax(ctx, "system_config", "weight", bson.M{"config_key": marker})
	if err != nil {
		t.Fatalf("get max error: %v", err)
	}
	if maxDoc == nil || value != int32(7) {
		t.Fatalf("max weight = %v, want 7", value)
	}
	value, _, err = conn.GetMin(ctx, "system_config", "weight", bson.M{"config_key": marker})
	if err != nil {
		t.Fatalf("get min error: %v", err)
	}
	if value != int32(3) {
		t.Fatalf("min weight = %v, want 3", value)
	}

	pushed, err := conn.PushReference(ctx, "system_config", live, "refs", "r1")
	if err != nil {
		t.Fatalf("push reference error: %v", err)
	}
	refs, ok := pushed["refs"].(bson.A)
	if !ok || len(refs) != 2 || refs[1] != "r1" {
		t.Fatalf("returned refs = %v, want [r0 r1]", pushed["refs"])
	}

	fetched, err := conn.GetByID(ctx, "system_config", live["_id"])
	if err != nil {
		t.Fatalf("get by id error: %v", err)
	}
	refs, ok = fetched["refs"].(bson.A)
	if !ok || len(refs) != 2 || refs[0] != "r0" || refs[1] != "r1" {
		t.Fatalf("persisted refs = %v, want [r0 r1]", fetched["refs"])
	}
}

func TestHealthCheck(t *testing.T) {
	conn := connect(t)

	status := conn.HealthCheck(context.Background())
	if !status.Healthy {
		t.Fatalf("unhealthy: %+v", status)
	}
	t.Logf("state=%s latency=%s", status.State, status.ResponseTime)
}
