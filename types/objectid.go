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

package types

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewObjectID produces a fresh identifier in the store's native format.
func NewObjectID() primitive.ObjectID {
	return primitive.NewObjectID()
}

// IsObjectID reports whether s is a 24-character hexadecimal string, the
// store's identifier encoding.
func IsObjectID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ToObjectID parses s into a native identifier. Malformed input fails with
// the driver's own validation error.
func ToObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// ObjectIDsToStrings maps each identifier to its canonical hex form,
// preserving order.
func ObjectIDsToStrings(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// ContainsObjectID scans list for target. Elements may be raw values or
// documents; documents are compared on the named property (default "_id").
// Identifier pairs compare with the native equality, everything else with
// strict typed equality.
func ContainsObjectID(list []interface{}, target interface{}, property string) bool {
	if property == "" {
		property = "_id"
	}
	for _, elem := range list {
		candidate := elem
		if doc, ok := documentValue(elem, property); ok {
			candidate = doc
		}
		if idEqual(candidate, target) {
			return true
		}
	}
	return false
}

func documentValue(elem interface{}, property string) (interface{}, bool) {
	switch doc := elem.(type) {
	case bson.M:
		v, ok := doc[property]
		return v, ok
	case map[string]interface{}:
		v, ok := doc[property]
		return v, ok
	case bson.D:
		for _, e := range doc {
			if e.Key == property {
				return e.Value, true
			}
		}
	}
	return nil, false
}

// idEqual is a single typed equality: when both sides are identifiers (or
// their hex encodings) they compare as identifiers, otherwise as plain
// comparable values.
func idEqual(a, b interface{}) bool {
	aid, aok := asObjectID(a)
	bid, bok := asObjectID(b)
	if aok && bok {
		return aid == bid
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asObjectID(v interface{}) (primitive.ObjectID, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t, true
	case string:
		if !IsObjectID(t) {
			return primitive.NilObjectID, false
		}
		id, err := primitive.ObjectIDFromHex(t)
		return id, err == nil
	default:
		return primitive.NilObjectID, false
	}
}
