package expr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Node is a single immutable tree node over the LIA+arrays theory. The core
// never mutates a Node in place; every rewrite constructs new nodes and
// shares unchanged subtrees by pointer.
//
// Node doubles as the Expression contract of spec.md §3: kind, sort, operand
// list, and a structural identity (Key) usable as a hash-map key are exposed
// directly as fields/methods rather than behind an interface, since every
// caller in this module needs concrete access to IntValue/Name/Args.
type Node struct {
	Kind Kind
	Sort Sort

	// Name identifies a Var/ArrayVar leaf.
	Name string

	// IntValue holds the value of an IntConst leaf.
	IntValue int64
	// BoolValue holds the value of a BoolConst leaf.
	BoolValue bool

	// Args holds operands in left-to-right order for every non-leaf kind.
	Args []*Node

	key     string
	keyOnce sync.Once
}

// Key returns a string usable as a hash-map key that is equal for two nodes
// iff they are structurally identical: same constant value, same variable
// name, or same kind with recursively-equal operands. Sort is not part of
// the key, and variables are keyed by name alone, so an int, a bool and an
// array variable of the same name share one key. IntervalMap and ArrayEqualityGraph key off
// this, never off pointer identity, since preprocessing and rewriting build
// fresh nodes for subtrees that are logically the same term.
func (n *Node) Key() string {
	n.keyOnce.Do(func() {
		var b strings.Builder
		n.writeKey(&b)
		n.key = b.String()
	})
	return n.key
}

func (n *Node) writeKey(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case IntConst:
		b.WriteString("c:")
		b.WriteString(strconv.FormatInt(n.IntValue, 10))
		return
	case BoolConst:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(n.BoolValue))
		return
	case IntVar, BoolVar, ArrayVar:
		b.WriteString("v:")
		b.WriteString(n.Name)
		return
	}
	b.WriteString(n.Kind.String())
	b.WriteByte('(')
	for i, a := range n.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		a.writeKey(b)
	}
	b.WriteByte(')')
}

// IsLeaf reports whether n is a constant or variable with no operands.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case IntConst, BoolConst, IntVar, BoolVar, ArrayVar:
		return true
	default:
		return false
	}
}

// IsArrayEq reports whether n is an equality whose both sides have array
// sort, per spec.md §4.1 step 3 (`is_array_eq`).
func (n *Node) IsArrayEq() bool {
	return n.Kind == Eq && len(n.Args) == 2 && n.Args[0].Sort == SortArray && n.Args[1].Sort == SortArray
}

// IsSelect reports whether n is a select(array, index) term — the only
// other kind of IntervalMap key besides a plain int variable.
func (n *Node) IsSelect() bool {
	return n.Kind == Select
}

// SelectDepth counts nested selects (select(a, select(b, ...))) — used by
// the sampling loop to impose a deterministic draw order (spec.md §4.5
// step 3: "sorted by number of nested selects ascending").
func (n *Node) SelectDepth() int {
	if n.Kind != Select {
		return 0
	}
	depth := 1
	for _, a := range n.Args {
		if d := a.SelectDepth(); d+1 > depth {
			depth = d + 1
		}
	}
	return depth
}

func (n *Node) String() string {
	switch n.Kind {
	case IntConst:
		return strconv.FormatInt(n.IntValue, 10)
	case BoolConst:
		return strconv.FormatBool(n.BoolValue)
	case IntVar, BoolVar, ArrayVar:
		return n.Name
	}
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", n.Kind.String(), strings.Join(parts, " "))
}

// Constructors. All of them are pure: they never look at or mutate an
// existing Node, they only assemble a new one.

func Int(v int64) *Node { return &Node{Kind: IntConst, Sort: SortInt, IntValue: v} }
func Bool(v bool) *Node { return &Node{Kind: BoolConst, Sort: SortBool, BoolValue: v} }
func IntVariable(name string) *Node  { return &Node{Kind: IntVar, Sort: SortInt, Name: name} }
func BoolVariable(name string) *Node { return &Node{Kind: BoolVar, Sort: SortBool, Name: name} }
func ArrayVariable(name string) *Node { return &Node{Kind: ArrayVar, Sort: SortArray, Name: name} }

func NAdd(args ...*Node) *Node { return &Node{Kind: Add, Sort: SortInt, Args: args} }
func NSub(a, b *Node) *Node    { return &Node{Kind: Sub, Sort: SortInt, Args: []*Node{a, b}} }
func NMul(args ...*Node) *Node { return &Node{Kind: Mul, Sort: SortInt, Args: args} }
func NUMinus(a *Node) *Node    { return &Node{Kind: UMinus, Sort: SortInt, Args: []*Node{a}} }

func NSelect(arr, idx *Node) *Node { return &Node{Kind: Select, Sort: SortInt, Args: []*Node{arr, idx}} }
func NStore(arr, idx, val *Node) *Node {
	return &Node{Kind: Store, Sort: SortArray, Args: []*Node{arr, idx, val}}
}

func NEq(a, b *Node) *Node       { return &Node{Kind: Eq, Sort: SortBool, Args: []*Node{a, b}} }
func NDistinct(a, b *Node) *Node { return &Node{Kind: Distinct, Sort: SortBool, Args: []*Node{a, b}} }
func NLe(a, b *Node) *Node       { return &Node{Kind: Le, Sort: SortBool, Args: []*Node{a, b}} }
func NGe(a, b *Node) *Node       { return &Node{Kind: Ge, Sort: SortBool, Args: []*Node{a, b}} }
func NLt(a, b *Node) *Node       { return &Node{Kind: Lt, Sort: SortBool, Args: []*Node{a, b}} }
func NGt(a, b *Node) *Node       { return &Node{Kind: Gt, Sort: SortBool, Args: []*Node{a, b}} }

func NAnd(args ...*Node) *Node { return &Node{Kind: And, Sort: SortBool, Args: args} }
func NOr(args ...*Node) *Node  { return &Node{Kind: Or, Sort: SortBool, Args: args} }
func NNot(a *Node) *Node       { return &Node{Kind: Not, Sort: SortBool, Args: []*Node{a}} }
func NIte(c, t, e *Node) *Node { return &Node{Kind: Ite, Sort: t.Sort, Args: []*Node{c, t, e}} }
