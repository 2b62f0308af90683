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
package mir

import (
	"gatecore/diag"
	"gatecore/rhif"
)

// unionFind is a standard disjoint-set structure over rhif.SlotId, path
// compression on find, union by rank.
type unionFind struct {
	parent map[rhif.SlotId]rhif.SlotId
	rank   map[rhif.SlotId]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[rhif.SlotId]rhif.SlotId), rank: make(map[rhif.SlotId]int)}
}

func (u *unionFind) find(x rhif.SlotId) rhif.SlotId {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b rhif.SlotId) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// Solve proves every recorded Equivalence unifies, by union-finding the
// paired slots into groups and checking every member of a group shares one
// Kind. Since this builder never leaves a slot's Kind unresolved (see
// build.go's doc comment), solving reduces to a consistency check rather
// than inferring any free type variable — a mismatch is reported against
// the constraint's originating source location, per §3.1's invariant that
// "the type checker must prove all pairs unify".
func Solve(fn *Function) (*rhif.Object, *diag.Error) {
	uf := newUnionFind()
	for _, eq := range fn.Equivalences {
		uf.union(eq.A, eq.B)
	}
	groups := make(map[rhif.SlotId][]rhif.SlotId)
	for _, eq := range fn.Equivalences {
		root := uf.find(eq.A)
		groups[root] = append(groups[root], eq.A, eq.B)
	}
	for _, eq := range fn.Equivalences {
		members := groups[uf.find(eq.A)]
		canonical := fn.Object.KindOf(members[0])
		for _, m := range members[1:] {
			if !fn.Object.KindOf(m).Equal(canonical) {
				return nil, diag.New(diag.CauseType,
					"type mismatch: "+canonical.String()+" vs "+fn.Object.KindOf(m).String(),
					eq.Origin)
			}
		}
	}
	return fn.Object, nil
}
