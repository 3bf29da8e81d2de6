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

	"github.com/sirupsen/logrus"
)

func TestDefaultLoggerSetLevelAdjustsBackend(t *testing.T) {
	dl, ok := GetLogger().(*DefaultLogger)
	if !ok {
		t.Skip("a custom logger is installed")
	}

	dl.SetLevel(LogLevelDebug)
	if got := dl.logger.GetLevel(); got != logrus.DebugLevel {
		t.Fatalf("backend level = %v, want debug", got)
	}

	dl.SetLevel(LogLevelWarn)
	if got := dl.logger.GetLevel(); got != logrus.WarnLevel {
		t.Fatalf("backend level = %v, want warn", got)
	}

	dl.SetLevel(LogLevelInfo)
}
