/*
Copyright © 2024 the climindex authors.
This file is part of climindex.

climindex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climindex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climindex.  If not, see <http://www.gnu.org/licenses/>.
*/

package climindex

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/climindex/internal/hash"
)

// Cache memoizes index and event calculations by the content of the
// input field. Results are returned as copies, so callers may modify
// them. A Cache is safe for concurrent use.
type Cache struct {
	rc *requestcache.Cache
}

// NewCache returns a cache holding up to size results in memory.
func NewCache(size int) *Cache {
	return &Cache{
		rc: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return request.(cacheRequest).compute()
		}, runtime.GOMAXPROCS(-1),
			requestcache.Deduplicate(), requestcache.Memory(size)),
	}
}

type cacheRequest struct {
	f      *Field
	index  IndexFunc
	events EventsFunc
}

type eventPair struct {
	negative, positive *EventSet
}

func (r cacheRequest) compute() (interface{}, error) {
	if r.events != nil {
		neg, pos, err := r.events(r.f)
		if err != nil {
			return nil, err
		}
		return eventPair{negative: neg, positive: pos}, nil
	}
	return r.index(r.f)
}

func fieldKey(f *Field) string {
	return hash.Grid(f.Dims, f.Coords, f.Time, f.Calendar, f.Data.Elements)
}

// Index returns the named index of f, computing it only if the same
// index of a field with identical contents is not already cached.
func (c *Cache) Index(ctx context.Context, name string, f *Field) (*Series, error) {
	fn, err := LookupIndex(name)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("index_%s_%s", strings.ToUpper(name), fieldKey(f))
	return c.series(ctx, cacheRequest{f: f, index: fn}, key)
}

// CustomIndex returns index ci of f. Definitions are matched by their
// String description.
func (c *Cache) CustomIndex(ctx context.Context, ci *CustomIndex, f *Field) (*Series, error) {
	key := fmt.Sprintf("custom_%s_%s", hash.Hash(ci.String()), fieldKey(f))
	return c.series(ctx, cacheRequest{f: f, index: ci.Index}, key)
}

func (c *Cache) series(ctx context.Context, r cacheRequest, key string) (*Series, error) {
	result, err := c.rc.NewRequest(ctx, r, key).Result()
	if err != nil {
		return nil, err
	}
	return result.(*Series).Copy(), nil
}

// Events returns the negative and positive events of the given climate
// mode ("IOD" or "ENSO") in f.
func (c *Cache) Events(ctx context.Context, mode string, f *Field) (negative, positive *EventSet, err error) {
	fn, err := LookupEvents(mode)
	if err != nil {
		return nil, nil, err
	}
	key := fmt.Sprintf("events_%s_%s", strings.ToUpper(mode), fieldKey(f))
	result, err := c.rc.NewRequest(ctx, cacheRequest{f: f, events: fn}, key).Result()
	if err != nil {
		return nil, nil, err
	}
	p := result.(eventPair)
	return p.negative.Copy(), p.positive.Copy(), nil
}

// Requests returns the number of requests received by the memory cache
// and, in the last element, the number of requests that had to be
// computed.
func (c *Cache) Requests() []int { return c.rc.Requests() }
