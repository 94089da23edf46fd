// Package expr implements the immutable expression tree shared by every
// stage of the generalize-and-sample pipeline: preprocessing, implicant
// extraction, array-equality rewriting, and strengthening all read the same
// tree and never mutate it, only build new nodes.
package expr

// Kind tags the operator a Node represents. It is a closed set matching the
// quantifier-free LIA+arrays theory the sampler operates over; nothing
// upstream ever introduces a kind outside this list.
type Kind int

//go:generate stringer -type=Kind
const (
	// Special / error
	Bad Kind = iota

	// Leaves
	IntConst
	BoolConst
	IntVar
	BoolVar
	ArrayVar

	// Arithmetic
	Add
	Sub
	Mul
	UMinus

	// Arrays
	Select
	Store

	// Comparisons (always produce Bool)
	Eq
	Distinct
	Le
	Ge
	Lt
	Gt

	// Boolean connectives
	And
	Or
	Not
	Ite
)

func (k Kind) String() string {
	switch k {
	case Bad:
		return "bad"
	case IntConst:
		return "int-const"
	case BoolConst:
		return "bool-const"
	case IntVar:
		return "int-var"
	case BoolVar:
		return "bool-var"
	case ArrayVar:
		return "array-var"
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case UMinus:
		return "-"
	case Select:
		return "select"
	case Store:
		return "store"
	case Eq:
		return "="
	case Distinct:
		return "distinct"
	case Le:
		return "<="
	case Ge:
		return ">="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	case Ite:
		return "ite"
	default:
		return "unknown"
	}
}

// IsComparison reports whether k is one of the atom-producing relational
// operators the strengthener's rule table dispatches on.
func (k Kind) IsComparison() bool {
	switch k {
	case Eq, Distinct, Le, Ge, Lt, Gt:
		return true
	default:
		return false
	}
}

// Sort is the theory sort of a node: int, bool, or array(int -> int).
type Sort int

const (
	SortBool Sort = iota
	SortInt
	SortArray
)

func (s Sort) String() string {
	switch s {
	case SortBool:
		return "Bool"
	case SortInt:
		return "Int"
	case SortArray:
		return "(Array Int Int)"
	default:
		return "?"
	}
}
