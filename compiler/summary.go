// plateau/compiler/summary.go
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/panyam/plateau/decl"
)

var (
	scopeColor    = color.New(color.FgCyan).SprintFunc()
	latentColor   = color.New(color.FgGreen).SprintFunc()
	observedColor = color.New(color.FgYellow).SprintFunc()
)

// Summary renders a human-readable structural dump of the model: the
// scope tree followed by the variable list with kinds and resolved
// shapes. No numeric values are included.
func (m *ProbModel) Summary() string {
	var b strings.Builder

	vars := m.nodeSet()
	state := "uncompiled"
	if m.compiled != nil {
		state = fmt.Sprintf("compiled (%s)", m.compiled.Artifact().Algorithm)
	}
	fmt.Fprintf(&b, "ProbModel: %d variable(s), %s\n", len(vars), state)

	roots := m.session.Roots()
	if len(roots) > 0 {
		fmt.Fprintf(&b, "Scopes:\n")
		for _, root := range roots {
			writeScope(&b, root, 1)
		}
	}

	fmt.Fprintf(&b, "Variables:\n")
	for _, v := range vars {
		role := latentColor("latent")
		if v.Observed() {
			role = observedColor("observed")
		}
		fmt.Fprintf(&b, "  %-16s ~ %-20s shape=%s  %s\n", v.Name(), kindWithParams(v), v.Shape(), role)
	}
	return b.String()
}

func writeScope(b *strings.Builder, s *decl.Scope, depth int) {
	fmt.Fprintf(b, "%s%s\n", strings.Repeat("  ", depth), scopeColor(s.String()))
	for _, child := range s.Children() {
		writeScope(b, child, depth+1)
	}
}

func kindWithParams(v *decl.RandomVariable) string {
	params := v.Params()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, params[name]))
	}
	return fmt.Sprintf("%s(%s)", v.Kind(), strings.Join(parts, ", "))
}
