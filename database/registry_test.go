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
	"testing"
	"time"
)

func TestUseReturnsSameInstance(t *testing.T) {
	r := NewRegistry()

	first := r.Use("primary")
	second := r.Use("primary")
	if first != second {
		t.Fatal("Use returned different instances for the same id")
	}
	if first.ID() != "primary" {
		t.Fatalf("placeholder id = %q, want %q", first.ID(), "primary")
	}
	if got := first.State(); got != StateUninitialized {
		t.Fatalf("placeholder state = %s, want UNINITIALIZED", got)
	}
}

func TestStoreInsertsWhenAbsent(t *testing.T) {
	r := NewRegistry()
	conn := NewConnection(&ConnectionConfig{ID: "a", URI: "mongodb://localhost:27017"})

	if err := r.Store("a", conn); err != nil {
		t.Fatalf("store error: %v", err)
	}
	if got := r.Use("a"); got != conn {
		t.Fatal("Use did not return the stored connection")
	}
	if r.Len() != 1 {
		t.Fatalf("registry length = %d, want 1", r.Len())
	}
}

func TestStoreAdoptsRegistryKey(t *testing.T) {
	r := NewRegistry()
	conn := NewConnection(&ConnectionConfig{URI: "mongodb://localhost:27017"})

	if err := r.Store("primary", conn); err != nil {
		t.Fatalf("store error: %v", err)
	}
	if conn.ID() != "primary" {
		t.Fatalf("stored connection id = %q, want the registry key", conn.ID())
	}
	if r.Use("primary") != conn {
		t.Fatal("Use did not return the stored connection")
	}
}

func TestStoreMergesIntoExisting(t *testing.T) {
	r := NewRegistry()

	existing := r.Use("a")
	existing.Config().Database = "keep"
	existing.Config().PingTimeout = 2 * time.Second

	incoming := NewConnection(&ConnectionConfig{
		URI:      "mongodb://db1:27017",
		Replicas: []string{"db2:27017"},
		Debug:    true,
	})
	if err := r.Store("a", incoming); err != nil {
		t.Fatalf("store error: %v", err)
	}

	got := r.Use("a")
	if got != existing {
		t.Fatal("merge replaced the record instead of mutating it")
	}
	if got.ID() != "a" {
		t.Fatalf("merge changed the record id to %q", got.ID())
	}
	if got.Config().URI != "mongodb://db1:27017" {
		t.Fatalf("incoming URI did not win: %q", got.Config().URI)
	}
	if got.Config().Database != "keep" {
		t.Fatalf("field absent from the patch was overwritten: %q", got.Config().Database)
	}
	if got.Config().PingTimeout != 2*time.Second {
		t.Fatalf("field absent from the patch was overwritten: %v", got.Config().PingTimeout)
	}
	if !got.Debug() {
		t.Fatal("incoming debug flag did not win")
	}
}

func TestStoreMergesModels(t *testing.T) {
	r := NewRegistry()

	existing := r.Use("a")
	existing.models["legacy"] = &Model{Name: "legacy"}

	incoming := NewConnection(&ConnectionConfig{URI: "mongodb://x:27017"})
	incoming.models["users"] = &Model{Name: "users"}

	if err := r.Store("a", incoming); err != nil {
		t.Fatalf("store error: %v", err)
	}
	got := r.Use("a")
	if got.Model("legacy") == nil {
		t.Fatal("existing model was dropped by the merge")
	}
	if got.Model("users") == nil {
		t.Fatal("incoming model was not merged")
	}
}

func TestGenerateID(t *testing.T) {
	r := NewRegistry()

	a := r.GenerateID()
	b := r.GenerateID()
	if a == b {
		t.Fatal("consecutive ids collided")
	}
	if len(a) != 64 {
		t.Fatalf("id length = %d, want 64", len(a))
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("id contains non-hex byte %q", c)
		}
	}
}
