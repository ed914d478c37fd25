package queryspec

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/roach88/docq/internal/queryir"
)

// Operator heads of call expressions.
const (
	opAnd   = "and"
	opOr    = "or"
	opNot   = "not"
	opIn    = "in"
	opIsNil = "is_nil"
)

// queryKeys lists the keys a query definition may carry.
var queryKeys = map[string]bool{
	"name": true, "from": true, "where": true, "select": true,
	"order_by": true, "limit": true, "offset": true, "distinct": true,
	"group_by": true, "having": true, "lock": true, "joins": true,
}

// Parse builds a normalized query from a decoded query definition, as
// produced by encoding/json (with or without UseNumber) or yaml.v3.
func Parse(def any) (queryir.Query, error) {
	m, ok := def.(map[string]any)
	if !ok {
		return queryir.Query{}, parseErrorf("", "query must be an object, got %T", def)
	}

	for _, k := range sortedKeys(m) {
		if !queryKeys[k] {
			return queryir.Query{}, parseErrorf(k, "unknown query key")
		}
	}

	var (
		q   queryir.Query
		err error
	)

	from, ok := m["from"]
	if !ok {
		return queryir.Query{}, parseErrorf("from", "is required")
	}
	if q.Source, err = parseSource("from", from); err != nil {
		return queryir.Query{}, err
	}

	if q.Wheres, err = parseExprList("where", m["where"]); err != nil {
		return queryir.Query{}, err
	}

	if sel, ok := m["select"]; ok {
		if q.Select, err = parseExpr("select", sel); err != nil {
			return queryir.Query{}, err
		}
	}

	if q.OrderBys, err = parseOrderBys("order_by", m["order_by"]); err != nil {
		return queryir.Query{}, err
	}

	if q.Limit, err = parseCount("limit", m["limit"]); err != nil {
		return queryir.Query{}, err
	}
	if q.Offset, err = parseCount("offset", m["offset"]); err != nil {
		return queryir.Query{}, err
	}

	if v, ok := m["distinct"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return queryir.Query{}, parseErrorf("distinct", "must be a boolean, got %T", v)
		}
		q.Distinct = b
	}

	if q.GroupBy, err = parseExprList("group_by", m["group_by"]); err != nil {
		return queryir.Query{}, err
	}
	if q.Having, err = parseExprList("having", m["having"]); err != nil {
		return queryir.Query{}, err
	}

	if v, ok := m["lock"]; ok {
		s, isString := v.(string)
		if !isString {
			return queryir.Query{}, parseErrorf("lock", "must be a string, got %T", v)
		}
		q.Lock = s
	}

	if q.Joins, err = parseJoins("joins", m["joins"]); err != nil {
		return queryir.Query{}, err
	}

	return q, nil
}

// parseSource accepts a collection name or {collection, entity}.
func parseSource(path string, v any) (queryir.Source, error) {
	switch src := v.(type) {
	case string:
		if src == "" {
			return queryir.Source{}, parseErrorf(path, "collection name is empty")
		}
		return queryir.Source{Collection: src}, nil

	case map[string]any:
		coll, ok := src["collection"].(string)
		if !ok || coll == "" {
			return queryir.Source{}, parseErrorf(path+".collection", "must be a non-empty string")
		}
		out := queryir.Source{Collection: coll}

		if raw, ok := src["entity"]; ok && raw != nil {
			// Round-trip through JSON to reuse the Entity tags.
			b, err := json.Marshal(raw)
			if err != nil {
				return queryir.Source{}, parseErrorf(path+".entity", "%v", err)
			}
			var entity queryir.Entity
			if err := json.Unmarshal(b, &entity); err != nil {
				return queryir.Source{}, parseErrorf(path+".entity", "%v", err)
			}
			if entity.Name == "" {
				return queryir.Source{}, parseErrorf(path+".entity.name", "is required")
			}
			out.Entity = &entity
		}
		return out, nil

	default:
		return queryir.Source{}, parseErrorf(path, "must be a collection name or object, got %T", v)
	}
}

func parseJoins(path string, v any) ([]queryir.Join, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, parseErrorf(path, "must be a list, got %T", v)
	}

	joins := make([]queryir.Join, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.(map[string]any)
		if !ok {
			return nil, parseErrorf(at, "must be an object, got %T", item)
		}
		src, err := parseSource(at+".from", m["from"])
		if err != nil {
			return nil, err
		}
		join := queryir.Join{Source: src}
		if on, ok := m["on"]; ok {
			if join.On, err = parseExpr(at+".on", on); err != nil {
				return nil, err
			}
		}
		joins = append(joins, join)
	}
	return joins, nil
}

// parseOrderBys accepts ["asc"|"desc", expr] pairs or bare expressions.
func parseOrderBys(path string, v any) ([]queryir.OrderBy, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, parseErrorf(path, "must be a list, got %T", v)
	}

	orders := make([]queryir.OrderBy, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", path, i)

		if pair, ok := item.([]any); ok && len(pair) == 2 {
			if dir, ok := pair[0].(string); ok && (dir == "asc" || dir == "desc") {
				e, err := parseExpr(at+"[1]", pair[1])
				if err != nil {
					return nil, err
				}
				o := queryir.OrderBy{Expr: e}
				if dir == "desc" {
					o.Dir = queryir.Desc
				}
				orders = append(orders, o)
				continue
			}
		}

		e, err := parseExpr(at, item)
		if err != nil {
			return nil, err
		}
		orders = append(orders, queryir.OrderBy{Expr: e})
	}
	return orders, nil
}

func parseExprList(path string, v any) ([]queryir.Expr, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, parseErrorf(path, "must be a list, got %T", v)
	}
	exprs := make([]queryir.Expr, 0, len(items))
	for i, item := range items {
		e, err := parseExpr(fmt.Sprintf("%s[%d]", path, i), item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// ParseExpr builds an expression from its decoded form.
//
//	scalar                       literal
//	{"field": n, "binding": i}   field reference (binding defaults to 0)
//	{"param": i, "value": v}     resolved parameter
//	{"literal": v}               literal of any shape, lists included
//	{"list": [...]}              literal list
//	{"tuple": [...]}             tuple
//	{"fragment": "..."}          raw fragment
//	[op, args...]                call; op is ==, !=, <, <=, >, >=,
//	                             and, or, not, in or is_nil
func ParseExpr(v any) (queryir.Expr, error) {
	return parseExpr("", v)
}

func parseExpr(path string, v any) (queryir.Expr, error) {
	switch n := v.(type) {
	case map[string]any:
		return parseNode(path, n)
	case []any:
		return parseCall(path, n)
	default:
		return queryir.Literal{Value: normalizeNumber(v)}, nil
	}
}

func parseNode(path string, m map[string]any) (queryir.Expr, error) {
	switch {
	case has(m, "field"):
		if err := onlyKeys(path, m, "field", "binding"); err != nil {
			return nil, err
		}
		name, ok := m["field"].(string)
		if !ok || name == "" {
			return nil, parseErrorf(path+".field", "must be a non-empty string")
		}
		f := queryir.Field{Name: name}
		if b, ok := m["binding"]; ok {
			binding, ok := toInt64(b)
			if !ok || binding < 0 {
				return nil, parseErrorf(path+".binding", "must be a non-negative integer")
			}
			f.Binding = int(binding)
		}
		return f, nil

	case has(m, "param"):
		if err := onlyKeys(path, m, "param", "value"); err != nil {
			return nil, err
		}
		idx, ok := toInt64(m["param"])
		if !ok || idx < 0 {
			return nil, parseErrorf(path+".param", "must be a non-negative integer")
		}
		return queryir.Param{Index: int(idx), Value: normalizeValue(m["value"])}, nil

	case has(m, "literal"):
		if err := onlyKeys(path, m, "literal"); err != nil {
			return nil, err
		}
		return queryir.Literal{Value: normalizeValue(m["literal"])}, nil

	case has(m, "list"), has(m, "tuple"):
		key := "list"
		if has(m, "tuple") {
			key = "tuple"
		}
		if err := onlyKeys(path, m, key); err != nil {
			return nil, err
		}
		elems, err := parseExprList(path+"."+key, m[key])
		if err != nil {
			return nil, err
		}
		if elems == nil {
			elems = []queryir.Expr{}
		}
		if key == "tuple" {
			return queryir.Tuple{Elems: elems}, nil
		}
		return queryir.List{Elems: elems}, nil

	case has(m, "fragment"):
		if err := onlyKeys(path, m, "fragment"); err != nil {
			return nil, err
		}
		text, ok := m["fragment"].(string)
		if !ok {
			return nil, parseErrorf(path+".fragment", "must be a string")
		}
		return queryir.Fragment{Text: text}, nil
	}

	return nil, parseErrorf(path, "unknown expression object with keys %v", sortedKeys(m))
}

// parseCall parses [op, args...].
func parseCall(path string, call []any) (queryir.Expr, error) {
	if len(call) == 0 {
		return nil, parseErrorf(path, "empty call")
	}
	op, ok := call[0].(string)
	if !ok {
		return nil, parseErrorf(path+"[0]", "operator must be a string, got %T", call[0])
	}

	args := make([]queryir.Expr, 0, len(call)-1)
	for i, raw := range call[1:] {
		e, err := parseExpr(fmt.Sprintf("%s[%d]", path, i+1), raw)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}

	arity := func(want int) error {
		if len(args) != want {
			return parseErrorf(path, "%s takes %d argument(s), got %d", op, want, len(args))
		}
		return nil
	}

	if cmp := queryir.CompareOp(op); cmp.Valid() {
		if err := arity(2); err != nil {
			return nil, err
		}
		return queryir.Compare{Op: cmp, Left: args[0], Right: args[1]}, nil
	}

	switch op {
	case opAnd, opOr:
		if len(args) < 2 {
			return nil, parseErrorf(path, "%s takes at least 2 arguments, got %d", op, len(args))
		}
		acc := args[0]
		for _, next := range args[1:] {
			if op == opAnd {
				acc = queryir.And{Left: acc, Right: next}
			} else {
				acc = queryir.Or{Left: acc, Right: next}
			}
		}
		return acc, nil

	case opNot:
		if err := arity(1); err != nil {
			return nil, err
		}
		return queryir.Not{Expr: args[0]}, nil

	case opIsNil:
		if err := arity(1); err != nil {
			return nil, err
		}
		return queryir.IsNil{Expr: args[0]}, nil

	case opIn:
		if err := arity(2); err != nil {
			return nil, err
		}
		return queryir.In{Left: args[0], Right: args[1]}, nil
	}

	return nil, parseErrorf(path+"[0]", "unknown operator %q", op)
}

// parseCount reads an optional non-negative integer.
func parseCount(path string, v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toInt64(v)
	if !ok || n < 0 {
		return nil, parseErrorf(path, "must be a non-negative integer, got %v", v)
	}
	return &n, nil
}

// toInt64 converts the integer shapes produced by JSON and YAML decoders.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// normalizeNumber turns json.Number into int64 or float64 so literal values
// do not depend on how the definition was decoded.
func normalizeNumber(v any) any {
	num, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := num.Int64(); err == nil {
		return i
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return v
}

// normalizeValue applies normalizeNumber through lists.
func normalizeValue(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, el := range list {
			out[i] = normalizeValue(el)
		}
		return out
	}
	return normalizeNumber(v)
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func onlyKeys(path string, m map[string]any, allowed ...string) error {
	for _, k := range sortedKeys(m) {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return parseErrorf(path, "unexpected key %q", k)
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
