package preprocess

import "github.com/L-Jun-Jie/megasampler/internal/expr"

// blastSelectStore implements spec.md §4.1 step 1's "blast_select_store":
// select(store(a,i,v), j) rewrites to ite(i=j, v, select(a,j)), idempotent
// and applied until no select sits directly atop a store. Children are
// blasted first (post-order), then the rule is reapplied to the rebuilt
// node's result since unwinding one store layer can reveal another select-
// over-store one layer down a nested store chain.
func blastSelectStore(n *expr.Node) *expr.Node {
	if n == nil {
		return nil
	}
	args := make([]*expr.Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = blastSelectStore(a)
	}
	rebuilt := rebuild(n, args)

	if rebuilt.Kind != expr.Select || rebuilt.Args[0].Kind != expr.Store {
		return rebuilt
	}
	store := rebuilt.Args[0]
	idx := rebuilt.Args[1]
	base, writeIdx, writeVal := store.Args[0], store.Args[1], store.Args[2]

	replacement := expr.NIte(
		expr.NEq(writeIdx, idx),
		writeVal,
		expr.NSelect(base, idx),
	)
	return blastSelectStore(replacement)
}
