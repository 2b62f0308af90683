// Copyright (c) 2024 The gatecore Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package passmgr

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
	"sync"

	"gatecore/diag"
	"gatecore/kernel"
	"gatecore/sourcepool"
)

// cacheKey combines a kernel's content-hash function id with a fingerprint
// of every sibling kernel visible to it: a Call's resolution now inlines
// the callee's actual body, not just its return Kind, so the same source
// recompiled against a sibling whose body changed is not the same
// compilation even though its signature (name, return Kind) is unchanged.
type cacheKey struct {
	fn       sourcepool.FunctionId
	siblings uint64
}

// siblingFingerprint hashes every sibling kernel's own content-hash
// FunctionId — already a hash of its name+source — rather than rehashing
// kernel bodies itself.
func siblingFingerprint(kernels map[string]*kernel.Kernel) uint64 {
	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	buf := make([]byte, 8)
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf, uint64(kernels[name].FunctionId))
		h.Write(buf)
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// Cache memoizes Compile results by kernel function id and visible sibling
// set — the supplemented kernel-level fingerprint cache (SPEC_FULL.md), a
// direct generalization of §5's "a pass may be memoized by its input hash"
// up to whole-kernel granularity. Safe for concurrent use by CompileAll's
// worker pool.
type Cache struct {
	mu    sync.Mutex
	byKey map[cacheKey]*Result
}

func NewCache() *Cache {
	return &Cache{byKey: make(map[cacheKey]*Result)}
}

// CompileCached returns the cached Result for (k, kernels) if Compile
// already ran for that exact pair, recompiling and populating the cache
// otherwise. A failed compilation is never cached, so a transient fix to
// an unrelated sibling kernel can be retried.
func (c *Cache) CompileCached(k *kernel.Kernel, kernels map[string]*kernel.Kernel, opts Options) (*Result, *diag.Error) {
	key := cacheKey{fn: k.FunctionId, siblings: siblingFingerprint(kernels)}

	c.mu.Lock()
	r, hit := c.byKey[key]
	c.mu.Unlock()
	if hit {
		return r, nil
	}

	r, err := Compile(k, kernels, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byKey[key] = r
	c.mu.Unlock()
	return r, nil
}
