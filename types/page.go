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

import "go.mongodb.org/mongo-driver/bson"

// PageRequest describes pagination, an optional filter, and ordering for
// document queries.
type PageRequest struct {
	page     int
	pageSize int
	filter   bson.M
	sort     bson.D
}

// NewPageRequest creates a page request. Sort entries map field names to 1
// (ascending) or -1 (descending).
func NewPageRequest(page, pageSize int, filter bson.M, sort bson.D) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, sort: sort}
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = 10
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetFilter() bson.M {
	if p.filter == nil {
		return bson.M{}
	}
	return p.filter
}

func (p *PageRequest) GetSort() bson.D {
	return p.sort
}

// Pagination is one page of results plus the total match count.
type Pagination[T any] struct {
	Total    int64  `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Items    []*T   `json:"items"`
}

// NewDefaultPagination creates an empty pagination envelope for a page.
func NewDefaultPagination[T any](page, pageSize int) *Pagination[T] {
	return &Pagination[T]{
		Page:     page,
		PageSize: pageSize,
		Items:    []*T{},
	}
}
