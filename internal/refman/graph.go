package refman

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type nodeID uint32

// depGraph - граф зависимостей между загруженными сборками.
// Ребро dep -> user: сборка user ссылается на dep, поэтому dep идёт раньше.
type depGraph struct {
	Edges [][]nodeID
	Indeg []int
}

func newDepGraph(n int) depGraph {
	return depGraph{Edges: make([][]nodeID, n), Indeg: make([]int, n)}
}

func toNode(i int) nodeID {
	id, err := safecast.Conv[nodeID](i)
	if err != nil {
		panic(fmt.Errorf("assembly id overflow: %w", err))
	}
	return id
}

func (g *depGraph) addEdge(dep, user int) {
	to := toNode(user)
	if slices.Contains(g.Edges[dep], to) {
		return
	}
	g.Edges[dep] = append(g.Edges[dep], to)
	g.Indeg[user]++
}

type topo struct {
	Order  []nodeID // линейный порядок: зависимости раньше зависимых
	Cyclic bool
	Cycles []nodeID // узлы, оставшиеся в цикле
}

// toposortKahn упорядочивает узлы волнами; внутри волны - по возрастанию id,
// так что порядок детерминирован и совпадает с порядком ссылок, где это возможно.
func toposortKahn(g depGraph) topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	out := topo{Order: make([]nodeID, 0, n)}

	current := make([]nodeID, 0, n)
	for i := range n {
		if indeg[i] == 0 {
			current = append(current, toNode(i))
		}
	}

	for len(current) > 0 {
		var next []nodeID
		for _, id := range current {
			out.Order = append(out.Order, id)
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(out.Order) != n {
		out.Cyclic = true
		for i := range n {
			if indeg[i] > 0 {
				out.Cycles = append(out.Cycles, toNode(i))
			}
		}
	}
	return out
}
