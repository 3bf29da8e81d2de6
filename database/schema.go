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
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"
)

// SchemaSource is a shorthand schema description: either a path to a YAML
// file or an in-memory definition. Definition wins when both are set.
type SchemaSource struct {
	Path       string                    `yaml:"path" json:"path"`
	Definition map[string]CollectionSpec `yaml:"definition" json:"definition"`
}

// IsZero reports whether the source describes nothing.
func (s SchemaSource) IsZero() bool {
	return s.Path == "" && len(s.Definition) == 0
}

// CollectionSpec is the shorthand description of one collection: a field
// name to type-name mapping plus optional secondary indexes.
type CollectionSpec struct {
	Fields  map[string]string `yaml:"fields" json:"fields"`
	Indexes []IndexSpec       `yaml:"indexes" json:"indexes"`
}

// IndexSpec declares a secondary index over one or more fields.
type IndexSpec struct {
	Fields []string `yaml:"fields" json:"fields"`
	Unique bool     `yaml:"unique" json:"unique"`
}

// Model is a queryable handle bound to one collection name, produced by
// schema materialization. The live collection handle is bound after the
// link opens.
type Model struct {
	Name string
	Spec CollectionSpec
}

// IndexModels converts the declared indexes into driver index models.
func (m *Model) IndexModels() []mongo.IndexModel {
	out := make([]mongo.IndexModel, 0, len(m.Spec.Indexes))
	for _, idx := range m.Spec.Indexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		model := mongo.IndexModel{Keys: keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		out = append(out, model)
	}
	return out
}

// SchemaBuilder translates a shorthand schema description into collection
// models. Invoked once per connect cycle when the model set is empty; the
// result is merged into existing models, never a full replacement.
type SchemaBuilder interface {
	Build(ctx context.Context, source SchemaSource) (map[string]*Model, error)
}

type yamlSchemaBuilder struct {
	logger Logger
}

// NewSchemaBuilder returns the default YAML-backed schema builder.
func NewSchemaBuilder(logger Logger) SchemaBuilder {
	if logger == nil {
		logger = GetLogger()
	}
	return &yamlSchemaBuilder{logger: logger}
}

func (b *yamlSchemaBuilder) Build(ctx context.Context, source SchemaSource) (map[string]*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	definition := source.Definition
	if definition == nil {
		if source.Path == "" {
			return nil, ErrEmptySchema
		}
		data, err := os.ReadFile(source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file: %w", err)
		}
		if err := yaml.Unmarshal(data, &definition); err != nil {
			return nil, fmt.Errorf("failed to parse schema file %s: %w", source.Path, err)
		}
	}

	if len(definition) == 0 {
		return nil, ErrEmptySchema
	}

	models := make(map[string]*Model, len(definition))
	for name, spec := range definition {
		models[name] = &Model{Name: name, Spec: spec}
	}

	b.logger.Debug("Schema materialized", "collections", len(models))
	return models, nil
}
