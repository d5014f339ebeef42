// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTableAddAndLookup(t *testing.T) {
	t.Parallel()

	tbl := NewStaticTable[string](1024, 3)
	tbl.Add("GET", "/health", "health-handler")
	tbl.Add("GET", "/version", "version-handler")
	tbl.Freeze()

	v, ok := tbl.Lookup("GET", "/health")
	require.True(t, ok)
	assert.Equal(t, "health-handler", v)

	v, ok = tbl.Lookup("GET", "/version")
	require.True(t, ok)
	assert.Equal(t, "version-handler", v)

	_, ok = tbl.Lookup("GET", "/missing")
	assert.False(t, ok)

	_, ok = tbl.Lookup("POST", "/health")
	assert.False(t, ok, "method is part of the key")
}

func TestStaticTableFirstAddWins(t *testing.T) {
	t.Parallel()

	tbl := NewStaticTable[string](256, 3)
	tbl.Add("GET", "/a", "first")
	tbl.Add("GET", "/a", "second")
	tbl.Freeze()

	v, ok := tbl.Lookup("GET", "/a")
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestStaticTableAddPanicsAfterFreeze(t *testing.T) {
	t.Parallel()

	tbl := NewStaticTable[string](256, 3)
	tbl.Freeze()

	assert.Panics(t, func() {
		tbl.Add("GET", "/a", "too-late")
	})
}

func TestStaticTableLen(t *testing.T) {
	t.Parallel()

	tbl := NewStaticTable[int](256, 3)
	assert.Equal(t, 0, tbl.Len())
	tbl.Add("GET", "/a", 1)
	tbl.Add("GET", "/b", 2)
	assert.Equal(t, 2, tbl.Len())
}

func TestStaticTableLookupBeforeFreezeStillWorks(t *testing.T) {
	t.Parallel()

	tbl := NewStaticTable[string](256, 3)
	tbl.Add("GET", "/a", "value")

	v, ok := tbl.Lookup("GET", "/a")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestBloomFilterNeverFalseNegative(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(2048, 4)
	keys := []string{"/a", "/b", "/c", "/users/list", "/health"}
	for _, k := range keys {
		bf.Add([]byte(k))
	}
	for _, k := range keys {
		assert.True(t, bf.Test([]byte(k)), "must never false-negative on an added key")
	}
}

func TestBloomFilterRejectsObviousNonMembers(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(4096, 4)
	bf.Add([]byte("/known"))

	// Not a guarantee for every string (false positives are allowed), but
	// with a filter this large relative to one entry, a handful of
	// unrelated keys should not all collide.
	falsePositives := 0
	candidates := []string{"/totally/different", "/another/path", "/x", "/y", "/z"}
	for _, c := range candidates {
		if bf.Test([]byte(c)) {
			falsePositives++
		}
	}
	assert.Less(t, falsePositives, len(candidates), "a 4096-bit filter with one entry should not flag everything")
}
