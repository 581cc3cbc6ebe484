package space

import (
	"container/heap"
	"math"

	"github.com/ridepy/ridepy/internal/cache"
	"github.com/ridepy/ridepy/internal/loc"
)

// ShortestPathTree is the result of a single-source Dijkstra run: for every
// reachable node, its distance from the source and its predecessor on the
// shortest path. Unreachable nodes are absent from both maps.
//
// Exported (and JSON-tagged) so it can round-trip through a Redis-backed
// cache.RedisCache.
type ShortestPathTree struct {
	Dist map[loc.ILoc]float64  `json:"dist"`
	Prev map[loc.ILoc]loc.ILoc `json:"prev"`
}

// edge is one directed entry in GraphSpace's adjacency list.
type edge struct {
	to     loc.ILoc
	weight float64
}

// GraphSpace is a weighted undirected graph transport space. Shortest
// paths are computed on demand via Dijkstra and memoised in an LRU cache
// keyed by source vertex (spec.md §4.1, §9).
//
// GraphSpace itself holds only the immutable adjacency list; it is safe
// for concurrent reads from multiple goroutines (the fleet's worker pool)
// as long as the cache backing it is (cache.Cache implementations are).
type GraphSpace struct {
	adjacency map[loc.ILoc][]edge
	velocity  float64
	sptCache  cache.Cache[loc.ILoc, *ShortestPathTree]
}

// DefaultGraphCacheSize is the default LRU capacity for memoised shortest
// path trees — adequate for urban-scale graphs per spec.md §4.1.
const DefaultGraphCacheSize = 10_000

// NewGraphSpace creates a graph space from an edge list. Edges are
// undirected: each {u, v, weight} entry is added in both directions.
// Panics if velocity <= 0.
func NewGraphSpace(edges []GraphEdge, velocity float64, sptCache cache.Cache[loc.ILoc, *ShortestPathTree]) *GraphSpace {
	if velocity <= 0 {
		panic("space: GraphSpace velocity must be > 0")
	}
	adjacency := make(map[loc.ILoc][]edge)
	for _, e := range edges {
		adjacency[e.U] = append(adjacency[e.U], edge{to: e.V, weight: e.Weight})
		adjacency[e.V] = append(adjacency[e.V], edge{to: e.U, weight: e.Weight})
	}
	if sptCache == nil {
		c, err := cache.NewLRU[loc.ILoc, *ShortestPathTree](DefaultGraphCacheSize)
		if err != nil {
			panic("space: failed to create default LRU cache: " + err.Error())
		}
		sptCache = c
	}
	return &GraphSpace{adjacency: adjacency, velocity: velocity, sptCache: sptCache}
}

// GraphEdge is one undirected, weighted edge in the input to NewGraphSpace.
type GraphEdge struct {
	U, V   loc.ILoc
	Weight float64
}

func (s *GraphSpace) Velocity() float64 { return s.velocity }

func (s *GraphSpace) Dist(u, v loc.ILoc) float64 {
	if u == v {
		return 0
	}
	tree := s.treeFrom(u)
	d, ok := tree.Dist[v]
	if !ok {
		return math.Inf(1)
	}
	return d
}

func (s *GraphSpace) Time(u, v loc.ILoc) float64 {
	d := s.Dist(u, v)
	if math.IsInf(d, 1) {
		return math.Inf(1)
	}
	return d / s.velocity
}

// InterpDist walks the predecessor map from v back toward u, accumulating
// edge weights, until it reaches or exceeds distTo (spec.md §4.1). The
// returned location is the next node not yet reached when travelling from
// u toward v; the residual is the distance from the ideal (generally
// off-node) point on to that node.
func (s *GraphSpace) InterpDist(u, v loc.ILoc, distTo float64) (loc.ILoc, float64) {
	if u == v || distTo <= 0 {
		return v, 0
	}
	tree := s.treeFrom(u)
	total, ok := tree.Dist[v]
	if !ok {
		// Unreachable: nothing sensible to walk back through.
		return u, 0
	}
	if distTo >= total {
		return u, distTo - total
	}

	// Distance already covered walking backward from v.
	covered := 0.0
	cur := v
	for covered < distTo {
		prev, ok := tree.Prev[cur]
		if !ok {
			// Reached the source without covering the target distance —
			// numerical edge case, return source with zero residual.
			return u, 0
		}
		step := tree.Dist[cur] - tree.Dist[prev]
		if covered+step > distTo {
			// The ideal point lies strictly inside the edge prev->cur;
			// travelling toward v, "cur" has not yet been reached, so
			// report it with the distance still to walk from the ideal
			// point to cur.
			return cur, distTo - covered
		}
		covered += step
		cur = prev
	}
	return cur, 0
}

// InterpTime is the time-domain analogue of InterpDist.
func (s *GraphSpace) InterpTime(u, v loc.ILoc, timeTo float64) (loc.ILoc, float64) {
	node, residualDist := s.InterpDist(u, v, timeTo*s.velocity)
	return node, residualDist / s.velocity
}

// treeFrom returns the cached shortest-path tree from src, computing and
// caching it on a miss.
func (s *GraphSpace) treeFrom(src loc.ILoc) *ShortestPathTree {
	if tree, ok := s.sptCache.Get(src); ok {
		return tree
	}
	tree := s.dijkstra(src)
	s.sptCache.Add(src, tree)
	return tree
}

// dijkstra computes the single-source shortest path tree from src using a
// binary heap priority queue.
//
// Complexity: O((V + E) log V).
func (s *GraphSpace) dijkstra(src loc.ILoc) *ShortestPathTree {
	dist := map[loc.ILoc]float64{src: 0}
	prev := map[loc.ILoc]loc.ILoc{}
	visited := map[loc.ILoc]bool{}

	pq := &priorityQueue{{node: src, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true

		for _, e := range s.adjacency[item.node] {
			nd := item.dist + e.weight
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				prev[e.to] = item.node
				heap.Push(pq, pqItem{node: e.to, dist: nd})
			}
		}
	}

	return &ShortestPathTree{Dist: dist, Prev: prev}
}

// ─── Priority queue ─────────────────────────────────────────

type pqItem struct {
	node loc.ILoc
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
