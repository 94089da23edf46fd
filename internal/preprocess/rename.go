package preprocess

import (
	"regexp"

	"github.com/L-Jun-Jie/megasampler/internal/expr"
)

var solverInternalName = regexp.MustCompile(`^z3name!`)

// renameSolverInternals implements spec.md §4.1 step 4: every solver-
// internal fresh name matching z3name!… is renamed to the stable prefix
// mega!z3name!…, so downstream passes can tell user variables from
// tool-introduced ones by a name-prefix check alone.
func renameSolverInternals(n *expr.Node) *expr.Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		switch n.Kind {
		case expr.IntVar, expr.BoolVar, expr.ArrayVar:
			if solverInternalName.MatchString(n.Name) {
				renamed := &expr.Node{Kind: n.Kind, Sort: n.Sort, Name: "mega!" + n.Name}
				return renamed
			}
		}
		return n
	}
	args := make([]*expr.Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = renameSolverInternals(a)
	}
	return rebuild(n, args)
}

// IsToolIntroduced reports whether name was introduced by the renaming
// step above, as opposed to a user-declared variable.
func IsToolIntroduced(name string) bool {
	return len(name) >= 5 && name[:5] == "mega!"
}
