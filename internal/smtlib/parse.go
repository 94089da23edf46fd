package smtlib

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"

	megaerrors "github.com/L-Jun-Jie/megasampler/internal/errors"
	"github.com/L-Jun-Jie/megasampler/internal/expr"
)

var scriptParser = participle.MustBuild[Script](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
)

// Declared tracks one declare-fun signature: a 0-ary int/bool symbol, or an
// array-sorted symbol ((Array Int Int)).
type Declared struct {
	Name string
	Sort expr.Sort
}

// ParsedFormula is the result of reading a script: the conjunction of every
// top-level assert, plus the declared signature list in declaration order
// (spec.md §6: "keys in the order of the declared variables").
type ParsedFormula struct {
	Formula *expr.Node
	Vars    []expr.Var
}

// Parse reads the SMT-LIB2 source text src and returns the conjoined
// asserted formula and declared variables.
func Parse(src string) (*ParsedFormula, error) {
	script, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, megaerrors.Wrap(megaerrors.KindParseError, "smtlib", err)
	}

	env := map[string]expr.Sort{}
	var order []expr.Var
	var asserts []*expr.Node

	for _, cmd := range script.Commands {
		if cmd.IsAtom() || len(cmd.List) == 0 {
			continue
		}
		switch cmd.Head() {
		case "declare-fun", "declare-const":
			name, sort, err := convertDecl(cmd)
			if err != nil {
				return nil, err
			}
			if _, ok := env[name]; !ok {
				env[name] = sort
				order = append(order, expr.Var{Name: name, Sort: sort})
			}
		case "assert":
			if len(cmd.List) != 2 {
				return nil, megaerrors.New(megaerrors.KindParseError, "assert takes exactly one argument")
			}
			n, err := convertTerm(cmd.List[1], env)
			if err != nil {
				return nil, err
			}
			asserts = append(asserts, n)
		case "set-logic", "set-info", "check-sat", "get-model", "exit":
			// no-ops for this reduced reader: logic/metadata commands carry
			// no information the core pipeline needs.
		default:
			return nil, megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("unsupported command %q", cmd.Head()))
		}
	}

	var formula *expr.Node
	switch len(asserts) {
	case 0:
		formula = expr.Bool(true)
	case 1:
		formula = asserts[0]
	default:
		formula = expr.NAnd(asserts...)
	}
	return &ParsedFormula{Formula: formula, Vars: order}, nil
}

// convertDecl parses (declare-fun name (args...) sort) or
// (declare-const name sort).
func convertDecl(cmd *SExpr) (string, expr.Sort, error) {
	args := cmd.List[1:]
	if len(args) < 2 {
		return "", 0, megaerrors.New(megaerrors.KindParseError, "malformed declare-fun")
	}
	if args[0].Atom == nil {
		return "", 0, megaerrors.New(megaerrors.KindParseError, "declare-fun name must be a symbol")
	}
	name := *args[0].Atom

	sortExpr := args[len(args)-1]
	// For declare-fun the arg-list sexpr (args[1]) must be empty: this
	// reader only supports 0-ary function symbols (plain variables/arrays).
	if cmd.Head() == "declare-fun" {
		if len(args) < 3 {
			return "", 0, megaerrors.New(megaerrors.KindParseError, "malformed declare-fun")
		}
		if len(args[1].List) != 0 {
			return "", 0, megaerrors.New(megaerrors.KindParseError, "declare-fun with a non-empty argument list is not supported (uninterpreted functions are out of scope)")
		}
	}

	sort, err := convertSort(sortExpr)
	return name, sort, err
}

func convertSort(s *SExpr) (expr.Sort, error) {
	if s.Atom != nil {
		switch *s.Atom {
		case "Int":
			return expr.SortInt, nil
		case "Bool":
			return expr.SortBool, nil
		}
		return 0, megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("unsupported sort %q", *s.Atom))
	}
	if len(s.List) == 3 && s.List[0].Atom != nil && *s.List[0].Atom == "Array" {
		return expr.SortArray, nil
	}
	return 0, megaerrors.New(megaerrors.KindParseError, "unsupported sort expression")
}

func convertTerm(s *SExpr, env map[string]expr.Sort) (*expr.Node, error) {
	if s.Atom != nil {
		return convertAtom(*s.Atom, env)
	}
	if len(s.List) == 0 {
		return nil, megaerrors.New(megaerrors.KindParseError, "empty term")
	}
	if s.List[0].Atom == nil {
		return nil, megaerrors.New(megaerrors.KindParseError, "term head must be a symbol")
	}
	head := *s.List[0].Atom
	args := s.List[1:]

	children := make([]*expr.Node, len(args))
	for i, a := range args {
		n, err := convertTerm(a, env)
		if err != nil {
			return nil, err
		}
		children[i] = n
	}

	arity := func(n int) error {
		if len(children) != n {
			return megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("%q expects %d arguments, got %d", head, n, len(children)))
		}
		return nil
	}

	switch head {
	case "+":
		return expr.NAdd(children...), nil
	case "-":
		if len(children) == 1 {
			return expr.NUMinus(children[0]), nil
		}
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NSub(children[0], children[1]), nil
	case "*":
		return expr.NMul(children...), nil
	case "select":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NSelect(children[0], children[1]), nil
	case "store":
		if err := arity(3); err != nil {
			return nil, err
		}
		return expr.NStore(children[0], children[1], children[2]), nil
	case "=":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NEq(children[0], children[1]), nil
	case "distinct":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NDistinct(children[0], children[1]), nil
	case "<=":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NLe(children[0], children[1]), nil
	case ">=":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NGe(children[0], children[1]), nil
	case "<":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NLt(children[0], children[1]), nil
	case ">":
		if err := arity(2); err != nil {
			return nil, err
		}
		return expr.NGt(children[0], children[1]), nil
	case "and":
		return expr.NAnd(children...), nil
	case "or":
		return expr.NOr(children...), nil
	case "not":
		if err := arity(1); err != nil {
			return nil, err
		}
		return expr.NNot(children[0]), nil
	case "ite":
		if err := arity(3); err != nil {
			return nil, err
		}
		return expr.NIte(children[0], children[1], children[2]), nil
	default:
		return nil, megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("unsupported operator %q", head))
	}
}

func convertAtom(a string, env map[string]expr.Sort) (*expr.Node, error) {
	if a == "true" {
		return expr.Bool(true), nil
	}
	if a == "false" {
		return expr.Bool(false), nil
	}
	if v, err := strconv.ParseInt(a, 10, 64); err == nil {
		return expr.Int(v), nil
	}
	sort, ok := env[a]
	if !ok {
		return nil, megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("undeclared symbol %q", a))
	}
	switch sort {
	case expr.SortInt:
		return expr.IntVariable(a), nil
	case expr.SortBool:
		return expr.BoolVariable(a), nil
	case expr.SortArray:
		return expr.ArrayVariable(a), nil
	default:
		return nil, megaerrors.New(megaerrors.KindParseError, fmt.Sprintf("symbol %q has unknown sort", a))
	}
}
