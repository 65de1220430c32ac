package extract

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// link resolves calls between snippet functions and marks mutual recursion.
// Direct recursion is tracked per function and never forms a graph edge.
func (p *Profile) link() {
	names := make([]string, 0, len(p.byName))
	for _, name := range p.Metrics.Functions {
		if _, ok := p.byName[name]; ok {
			p.ids[name] = uint32(len(names))
			names = append(names, name)
		}
	}

	g := simple.NewDirectedGraph()
	for id := range names {
		g.AddNode(simple.Node(int64(id)))
	}

	for _, fn := range p.All() {
		seen := make(map[string]bool)
		collectCallees(&fn.Body, func(callee string) {
			target, ok := p.ids[callee]
			if !ok || callee == fn.Name || seen[callee] {
				return
			}
			seen[callee] = true
			fn.Callees = append(fn.Callees, callee)

			from, ok := p.ids[fn.Name]
			if !ok || p.byName[fn.Name] != fn {
				return
			}
			g.SetEdge(simple.Edge{F: simple.Node(int64(from)), T: simple.Node(int64(target))})
		})
	}

	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, int(n.ID()))
		}
		sort.Ints(ids)

		cycle := make([]string, 0, len(ids))
		for _, id := range ids {
			p.cyclic.Add(uint32(id))
			cycle = append(cycle, names[id])
		}
		p.Cycles = append(p.Cycles, cycle)
	}
	sort.Slice(p.Cycles, func(i, j int) bool {
		return p.ids[p.Cycles[i][0]] < p.ids[p.Cycles[j][0]]
	})
}

func collectCallees(r *Region, visit func(string)) {
	for _, c := range r.Calls {
		visit(c.Callee)
	}
	for _, l := range r.Loops {
		collectCallees(&l.Body, visit)
	}
}
