// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

// unionFind is an arena of posting indices. Using indices rather than
// pointer-linked nodes keeps group iteration order deterministic.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

// find returns the representative of i with path compression.
func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union merges the groups of a and b. The lower representative index wins,
// so a group's representative is always its earliest member.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// groups returns the member indices of every group keyed by representative,
// members in ascending index order.
func (u *unionFind) groups() map[int][]int {
	out := make(map[int][]int)
	for i := range u.parent {
		root := u.find(i)
		out[root] = append(out[root], i)
	}
	return out
}
