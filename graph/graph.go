// plateau/graph/graph.go
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panyam/plateau/decl"
)

// Edge is one dependency: Consumer's parameter ParamName takes its
// value from Producer.
type Edge struct {
	Consumer  *decl.RandomVariable
	ParamName string
	Producer  *decl.RandomVariable
}

func (e Edge) String() string {
	return fmt.Sprintf("%s.%s <- %s", e.Consumer.Name(), e.ParamName, e.Producer.Name())
}

// UndefinedReferenceError reports a parameter referencing a variable
// outside the node set being compiled.
type UndefinedReferenceError struct {
	Consumer  string
	ParamName string
	Missing   string
}

func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("variable %q parameter %q references %q, which is not in the model's node set",
		e.Consumer, e.ParamName, e.Missing)
}

// CyclicDependencyError reports a reference cycle; Cycle lists the
// variable names along it, ending where it started.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// Graph is the validated dependency DAG over a fixed node set.
type Graph struct {
	nodes  []*decl.RandomVariable
	byName map[string]*decl.RandomVariable
	edges  []Edge

	// producers per consumer name, deduplicated
	deps map[string][]*decl.RandomVariable
}

// Build extracts every reference edge from the nodes' parameter
// expressions and validates the result: node names must be unique
// within the set (DuplicateNameError; sessions enforce this per
// session, but an explicit node set can mix sessions or repeat a
// node), references must land inside the node set
// (UndefinedReferenceError), and the graph must be acyclic
// (CyclicDependencyError). A cycle is never silently dropped.
func Build(nodes []*decl.RandomVariable) (*Graph, error) {
	g := &Graph{
		nodes:  nodes,
		byName: map[string]*decl.RandomVariable{},
		deps:   map[string][]*decl.RandomVariable{},
	}
	for _, n := range nodes {
		if _, taken := g.byName[n.Name()]; taken {
			return nil, &decl.DuplicateNameError{Name: n.Name()}
		}
		g.byName[n.Name()] = n
	}
	for _, n := range nodes {
		seen := map[string]bool{}
		for _, pname := range paramNames(n) {
			ref, ok := n.Params()[pname].(*decl.RefParam)
			if !ok {
				continue
			}
			producer := ref.Target
			if producer == nil {
				producer = g.byName[ref.Name]
			}
			if producer == nil || g.byName[producer.Name()] != producer {
				return nil, &UndefinedReferenceError{Consumer: n.Name(), ParamName: pname, Missing: ref.Name}
			}
			g.edges = append(g.edges, Edge{Consumer: n, ParamName: pname, Producer: producer})
			if !seen[producer.Name()] {
				seen[producer.Name()] = true
				g.deps[n.Name()] = append(g.deps[n.Name()], producer)
			}
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, &CyclicDependencyError{Cycle: cycle}
	}
	return g, nil
}

// paramNames returns a node's parameter names in sorted order so edge
// extraction is deterministic.
func paramNames(n *decl.RandomVariable) []string {
	params := n.Params()
	out := make([]string, 0, len(params))
	for name := range params {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Nodes returns the node set in the order it was given.
func (g *Graph) Nodes() []*decl.RandomVariable { return g.nodes }

// Edges returns every dependency edge.
func (g *Graph) Edges() []Edge { return g.edges }

// DependenciesOf returns the distinct producers a node consumes.
func (g *Graph) DependenciesOf(name string) []*decl.RandomVariable {
	return g.deps[name]
}

// TopoOrder returns the nodes with every producer before its
// consumers. Ties break by declaration order, so joint-probability
// assembly is deterministic across runs.
func (g *Graph) TopoOrder() []*decl.RandomVariable {
	indegree := map[string]int{}
	consumers := map[string][]*decl.RandomVariable{}
	for _, n := range g.nodes {
		indegree[n.Name()] = len(g.deps[n.Name()])
		for _, producer := range g.deps[n.Name()] {
			consumers[producer.Name()] = append(consumers[producer.Name()], n)
		}
	}

	var ready []*decl.RandomVariable
	for _, n := range g.nodes {
		if indegree[n.Name()] == 0 {
			ready = append(ready, n)
		}
	}
	out := make([]*decl.RandomVariable, 0, len(g.nodes))
	for len(ready) > 0 {
		// lowest declaration seq first
		sort.SliceStable(ready, func(i, j int) bool { return ready[i].Seq() < ready[j].Seq() })
		n := ready[0]
		ready = ready[1:]
		out = append(out, n)
		for _, c := range consumers[n.Name()] {
			indegree[c.Name()]--
			if indegree[c.Name()] == 0 {
				ready = append(ready, c)
			}
		}
	}
	return out
}

// findCycle runs a colored DFS and returns the first cycle found as a
// name path (closed: first == last), or nil.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := map[string]int{}
	var stack []string

	var visit func(n *decl.RandomVariable) []string
	visit = func(n *decl.RandomVariable) []string {
		name := n.Name()
		color[name] = grey
		stack = append(stack, name)
		for _, producer := range g.deps[name] {
			switch color[producer.Name()] {
			case white:
				if cycle := visit(producer); cycle != nil {
					return cycle
				}
			case grey:
				// slice the cycle out of the DFS stack
				start := 0
				for i, s := range stack {
					if s == producer.Name() {
						start = i
						break
					}
				}
				return append(append([]string{}, stack[start:]...), producer.Name())
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	for _, n := range g.nodes {
		if color[n.Name()] == white {
			if cycle := visit(n); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
