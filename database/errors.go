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
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrModelNotReady is returned when a query helper is invoked before the
	// schema materializer has produced a model for the named collection.
	ErrModelNotReady = errors.New("collection model not materialized")

	// ErrNotConnected is returned when an operation requires a live link.
	ErrNotConnected = errors.New("database not connected")

	// ErrConnectionClosed is returned for operations on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrKeyNotFound is returned when a document lookup matches nothing.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyAlreadyExists is returned on duplicate key violations.
	ErrKeyAlreadyExists = errors.New("key already exists")

	// ErrEmptySchema is returned when a schema source yields no collections.
	ErrEmptySchema = errors.New("schema source is empty")
)

// TranslateError maps driver-level errors onto the package sentinels so
// callers can branch with errors.Is. Unrecognized errors pass through verbatim.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", ErrKeyAlreadyExists, err.Error())
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, err.Error())
	}

	return err
}
