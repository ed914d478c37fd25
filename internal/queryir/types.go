package queryir

// Expr is a node of the expression AST.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the document compiler.
//
// Expression kinds:
//   - Field, Literal, Param: operands
//   - Compare: ==, !=, <, <=, >, >=
//   - And, Or, Not: boolean connectives
//   - In: membership
//   - IsNil: null test
//   - List, Tuple: literal lists and select groupings
//   - Fragment: raw fragment (always rejected)
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Field references a field of a query source.
//
// Binding is the position of the source in the query (0 is the root source;
// anything else refers to a joined source).
type Field struct {
	Binding int
	Name    string
}

func (Field) exprNode() {}

// Literal is a constant scalar. Value holds a plain Go value (bool, integer,
// float, string, nil) or an ir.IRValue; it is encoded at compile time.
type Literal struct {
	Value any
}

func (Literal) exprNode() {}

// Param is a positional parameter that the planner has already resolved.
// Index is its position in the parameter list; Value is the resolved value.
type Param struct {
	Index int
	Value any
}

func (Param) exprNode() {}

// CompareOp is a comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpEq  CompareOp = "=="
	OpNe  CompareOp = "!="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
)

// Mirror returns the operator that keeps the comparison true when its
// operands are swapped (a < b is b > a).
func (op CompareOp) Mirror() CompareOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	default:
		return op
	}
}

// Valid reports whether op is one of the known comparison operators.
func (op CompareOp) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// Compare is a binary comparison.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (Compare) exprNode() {}

// And is a binary conjunction.
type And struct {
	Left  Expr
	Right Expr
}

func (And) exprNode() {}

// Or is a binary disjunction.
type Or struct {
	Left  Expr
	Right Expr
}

func (Or) exprNode() {}

// Not negates its operand.
type Not struct {
	Expr Expr
}

func (Not) exprNode() {}

// In tests membership of Left in Right.
// Right is normally a List or a Param bound to a list.
type In struct {
	Left  Expr
	Right Expr
}

func (In) exprNode() {}

// IsNil tests its operand for null.
type IsNil struct {
	Expr Expr
}

func (IsNil) exprNode() {}

// List is a literal list, used as the right operand of In.
type List struct {
	Elems []Expr
}

func (List) exprNode() {}

// Tuple is a fixed-size grouping of expressions in a select clause.
type Tuple struct {
	Elems []Expr
}

func (Tuple) exprNode() {}

// Fragment is a raw, store-specific fragment. The document compiler never
// accepts fragments.
type Fragment struct {
	Text string
}

func (Fragment) exprNode() {}

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// OrderBy is a single (expression, direction) pair.
type OrderBy struct {
	Expr Expr
	Dir  Direction
}

// Entity describes a typed model backing a source.
type Entity struct {
	Name       string   `json:"name"`
	PrimaryKey string   `json:"primary_key"`
	Fields     []string `json:"fields,omitempty"`
}

// Source names the collection a query reads from.
// Entity is nil for schemaless queries.
type Source struct {
	Collection string
	Entity     *Entity
}

// Join is a joined source. Joins are part of the representation only so they
// can be rejected explicitly.
type Join struct {
	Source Source
	On     Expr
}

// Query is the normalized, parameter-resolved query.
//
// Semantics:
//
//	FROM <source> WHERE <wheres...> SELECT <select>
//	ORDER BY <order...> LIMIT <limit> OFFSET <offset>
//
// Wheres are implicitly conjoined. Select is nil when the query selects the
// whole document. Distinct, GroupBy, Having, Lock and Joins are carried so the
// validator can reject them.
type Query struct {
	Source   Source
	Wheres   []Expr
	Select   Expr
	OrderBys []OrderBy
	Limit    *int64
	Offset   *int64

	Distinct bool
	GroupBy  []Expr
	Having   []Expr
	Lock     string
	Joins    []Join
}
