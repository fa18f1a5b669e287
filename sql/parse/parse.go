// Package parse turns SQL text into the select statements compiled by the
// planner.
package parse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/src-d/go-sql-planner/sql"
	"github.com/src-d/go-sql-planner/sql/ast"
	"github.com/src-d/go-sql-planner/sql/expression"
	"gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v1/vt/sqlparser"
)

var (
	// ErrUnsupportedSyntax is thrown when a specific syntax is not already supported
	ErrUnsupportedSyntax = errors.NewKind("unsupported syntax: %#v")

	// ErrInvalidSQLValType is returned when a SQLVal type is not valid.
	ErrInvalidSQLValType = errors.NewKind("invalid SQLVal of type: %d")

	// ErrInvalidSortOrder is returned when a sort order is not valid.
	ErrInvalidSortOrder = errors.NewKind("invalid sort order: %s")

	// ErrEmptyQuery is returned when the query has no statement.
	ErrEmptyQuery = errors.NewKind("query is empty")
)

// Parse parses the given SQL sentence and returns the corresponding select
// statement.
func Parse(ctx *sql.Context, query string) (*ast.Select, error) {
	span, _ := ctx.Span("parse", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	s := strings.TrimSpace(removeComments(query))
	if strings.HasSuffix(s, ";") {
		s = s[:len(s)-1]
	}

	if s == "" {
		return nil, ErrEmptyQuery.New()
	}

	stmt, err := sqlparser.Parse(s)
	if err != nil {
		return nil, err
	}

	sel, ok := stmt.(sqlparser.SelectStatement)
	if !ok {
		return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("%T statement", stmt))
	}

	return convertSelectStatement(sel)
}

func convertSelectStatement(s sqlparser.SelectStatement) (*ast.Select, error) {
	switch s := s.(type) {
	case *sqlparser.Select:
		return convertSelect(s)
	case *sqlparser.ParenSelect:
		return convertSelectStatement(s.Select)
	case *sqlparser.Union:
		return convertUnion(s)
	default:
		return nil, ErrUnsupportedSyntax.New(s)
	}
}

// convertUnion turns the left-deep union tree of the parser into a chain of
// composites starting at the leftmost select.
func convertUnion(u *sqlparser.Union) (*ast.Select, error) {
	if u.Limit != nil {
		return nil, sql.ErrUnsupportedConstruct.New("LIMIT")
	}

	head, err := convertSelectStatement(u.Left)
	if err != nil {
		return nil, err
	}

	if len(head.OrderBy) > 0 {
		return nil, sql.ErrUnsupportedConstruct.New("ORDER BY inside a UNION operand")
	}

	right, err := convertSelectStatement(u.Right)
	if err != nil {
		return nil, err
	}

	if right.Composite != nil || len(right.OrderBy) > 0 {
		return nil, sql.ErrUnsupportedConstruct.New("nested UNION operand")
	}

	var all bool
	switch u.Type {
	case sqlparser.UnionStr, sqlparser.UnionDistinctStr:
	case sqlparser.UnionAllStr:
		all = true
	default:
		return nil, ErrUnsupportedSyntax.New(u.Type)
	}

	last := head
	for last.Composite != nil {
		last = last.Composite.Right
	}
	last.Composite = &ast.Composite{Op: ast.Union, All: all, Right: right}

	head.OrderBy, err = orderByToKeys(u.OrderBy)
	if err != nil {
		return nil, err
	}

	return head, nil
}

func convertSelect(s *sqlparser.Select) (*ast.Select, error) {
	if s.Limit != nil {
		return nil, sql.ErrUnsupportedConstruct.New("LIMIT")
	}

	from, err := tableExprsToItems(s.From)
	if err != nil {
		return nil, err
	}

	columns, err := selectExprsToColumns(s.SelectExprs)
	if err != nil {
		return nil, err
	}

	result := &ast.Select{
		Distinct: s.Distinct != "",
		Columns:  columns,
		From:     from,
	}

	if s.Where != nil {
		if result.Where, err = exprToExpression(s.Where.Expr); err != nil {
			return nil, err
		}
	}

	if result.GroupBy, err = groupByToExpressions(s.GroupBy); err != nil {
		return nil, err
	}

	if s.Having != nil {
		if result.Having, err = exprToExpression(s.Having.Expr); err != nil {
			return nil, err
		}
	}

	if result.OrderBy, err = orderByToKeys(s.OrderBy); err != nil {
		return nil, err
	}

	return result, nil
}

func tableExprsToItems(te sqlparser.TableExprs) ([]*ast.FromItem, error) {
	var items []*ast.FromItem
	for _, t := range te {
		joined, err := tableExprToItems(t)
		if err != nil {
			return nil, err
		}
		items = append(items, joined...)
	}

	// SELECT without FROM is parsed as a select from dual.
	if len(items) == 1 && items[0].Table != nil &&
		items[0].Table.Parent == nil && strings.EqualFold(items[0].Table.Name, "dual") {
		return nil, nil
	}

	return items, nil
}

func tableExprToItems(te sqlparser.TableExpr) ([]*ast.FromItem, error) {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		item, err := aliasedTableToItem(t)
		if err != nil {
			return nil, err
		}
		return []*ast.FromItem{item}, nil
	case *sqlparser.ParenTableExpr:
		if len(t.Exprs) != 1 {
			return nil, sql.ErrUnsupportedConstruct.New("parenthesized table list")
		}
		return tableExprToItems(t.Exprs[0])
	case *sqlparser.JoinTableExpr:
		var join ast.JoinType
		switch t.Join {
		case sqlparser.JoinStr, sqlparser.StraightJoinStr:
			join = ast.InnerJoin
		case sqlparser.LeftJoinStr:
			join = ast.LeftOuterJoin
		case sqlparser.RightJoinStr:
			join = ast.RightOuterJoin
		default:
			return nil, sql.ErrUnsupportedConstruct.New(strings.ToUpper(t.Join))
		}

		if len(t.Condition.Using) > 0 {
			return nil, sql.ErrUnsupportedConstruct.New("USING clause on join")
		}

		left, err := tableExprToItems(t.LeftExpr)
		if err != nil {
			return nil, err
		}

		right, err := tableExprToItems(t.RightExpr)
		if err != nil {
			return nil, err
		}

		if len(right) != 1 {
			return nil, sql.ErrUnsupportedConstruct.New("join with a nested join on its right side")
		}

		var on sql.Expression
		if t.Condition.On != nil {
			if on, err = exprToExpression(t.Condition.On); err != nil {
				return nil, err
			}
		}

		return append(left, right[0].Joined(join, on)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(te)
	}
}

func aliasedTableToItem(t *sqlparser.AliasedTableExpr) (*ast.FromItem, error) {
	switch e := t.Expr.(type) {
	case sqlparser.TableName:
		name := sql.NewQualifiedName(e.Qualifier.String(), e.Name.String())
		return ast.NewTable(name, t.As.String()), nil
	case *sqlparser.Subquery:
		s, err := convertSelectStatement(e.Select)
		if err != nil {
			return nil, err
		}
		return ast.NewDerived(s, t.As.String()), nil
	default:
		return nil, ErrUnsupportedSyntax.New(t)
	}
}

func orderByToKeys(ob sqlparser.OrderBy) ([]ast.OrderKey, error) {
	var keys []ast.OrderKey
	for _, o := range ob {
		e, err := exprToExpression(o.Expr)
		if err != nil {
			return nil, err
		}

		var desc bool
		switch o.Direction {
		default:
			return nil, ErrInvalidSortOrder.New(o.Direction)
		case sqlparser.AscScr:
		case sqlparser.DescScr:
			desc = true
		}

		keys = append(keys, ast.OrderKey{Expr: e, Descending: desc})
	}

	return keys, nil
}

func selectExprsToColumns(se sqlparser.SelectExprs) ([]ast.SelectColumn, error) {
	var columns []ast.SelectColumn
	for _, e := range se {
		switch e := e.(type) {
		case *sqlparser.StarExpr:
			star, err := starToExpression(e)
			if err != nil {
				return nil, err
			}
			columns = append(columns, ast.SelectColumn{Expr: star})
		case *sqlparser.AliasedExpr:
			expr, err := exprToExpression(e.Expr)
			if err != nil {
				return nil, err
			}
			columns = append(columns, ast.SelectColumn{Expr: expr, Alias: e.As.String()})
		default:
			return nil, ErrUnsupportedSyntax.New(e)
		}
	}

	return columns, nil
}

func starToExpression(e *sqlparser.StarExpr) (sql.Expression, error) {
	if e.TableName.IsEmpty() {
		return expression.NewStar(), nil
	}

	if !e.TableName.Qualifier.IsEmpty() {
		return expression.NewQualifiedStar(
			e.TableName.Qualifier.String() + "." + e.TableName.Name.String(),
		), nil
	}

	return expression.NewQualifiedStar(e.TableName.Name.String()), nil
}

func selectExprsToExpressions(se sqlparser.SelectExprs) ([]sql.Expression, error) {
	var exprs []sql.Expression
	for _, e := range se {
		switch e := e.(type) {
		case *sqlparser.StarExpr:
			star, err := starToExpression(e)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, star)
		case *sqlparser.AliasedExpr:
			expr, err := exprToExpression(e.Expr)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		default:
			return nil, ErrUnsupportedSyntax.New(e)
		}
	}

	return exprs, nil
}

func groupByToExpressions(g sqlparser.GroupBy) ([]sql.Expression, error) {
	if len(g) == 0 {
		return nil, nil
	}

	es := make([]sql.Expression, len(g))
	for i, ve := range g {
		e, err := exprToExpression(ve)
		if err != nil {
			return nil, err
		}

		es[i] = e
	}

	return es, nil
}

func exprToExpression(e sqlparser.Expr) (sql.Expression, error) {
	switch v := e.(type) {
	default:
		return nil, ErrUnsupportedSyntax.New(e)
	case *sqlparser.ComparisonExpr:
		return comparisonExprToExpression(v)
	case *sqlparser.IsExpr:
		return isExprToExpression(v)
	case *sqlparser.NotExpr:
		c, err := exprToExpression(v.Expr)
		if err != nil {
			return nil, err
		}

		return expression.NewNot(c), nil
	case *sqlparser.SQLVal:
		return convertVal(v)
	case sqlparser.BoolVal:
		return expression.NewLiteral(bool(v)), nil
	case *sqlparser.NullVal:
		return expression.NewLiteral(nil), nil
	case *sqlparser.ColName:
		if !v.Qualifier.IsEmpty() {
			table := v.Qualifier.Name.String()
			if !v.Qualifier.Qualifier.IsEmpty() {
				table = v.Qualifier.Qualifier.String() + "." + table
			}
			return expression.NewUnresolvedQualifiedColumn(table, v.Name.String()), nil
		}
		return expression.NewUnresolvedColumn(v.Name.String()), nil
	case *sqlparser.FuncExpr:
		exprs, err := selectExprsToExpressions(v.Exprs)
		if err != nil {
			return nil, err
		}

		return expression.NewFunction(v.Name.Lowered(), v.Distinct, exprs...), nil
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr)
	case *sqlparser.AndExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}

		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewAnd(lhs, rhs), nil
	case *sqlparser.OrExpr:
		lhs, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}

		rhs, err := exprToExpression(v.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewOr(lhs, rhs), nil
	case *sqlparser.RangeCond:
		val, err := exprToExpression(v.Left)
		if err != nil {
			return nil, err
		}

		lower, err := exprToExpression(v.From)
		if err != nil {
			return nil, err
		}

		upper, err := exprToExpression(v.To)
		if err != nil {
			return nil, err
		}

		switch v.Operator {
		case sqlparser.BetweenStr:
			return expression.NewAnd(
				expression.NewComparison(expression.GtEq, val, lower),
				expression.NewComparison(expression.LtEq, val, upper),
			), nil
		case sqlparser.NotBetweenStr:
			return expression.NewOr(
				expression.NewLessThan(val, lower),
				expression.NewGreaterThan(val, upper),
			), nil
		default:
			return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("RangeCond with operator: %s", v.Operator))
		}
	case sqlparser.ValTuple:
		var exprs = make([]sql.Expression, len(v))
		for i, e := range v {
			expr, err := exprToExpression(e)
			if err != nil {
				return nil, err
			}
			exprs[i] = expr
		}
		return expression.NewTuple(exprs...), nil
	case *sqlparser.Subquery:
		s, err := convertSelectStatement(v.Select)
		if err != nil {
			return nil, err
		}
		return expression.NewSubquery(s), nil
	case *sqlparser.ExistsExpr:
		s, err := convertSelectStatement(v.Subquery.Select)
		if err != nil {
			return nil, err
		}
		return expression.NewExists(expression.NewSubquery(s)), nil
	case *sqlparser.UnaryExpr:
		return unaryExprToExpression(v)
	case *sqlparser.BinaryExpr:
		return binaryExprToExpression(v)
	}
}

func convertVal(v *sqlparser.SQLVal) (sql.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewLiteral(string(v.Val)), nil
	case sqlparser.IntVal:
		val, err := strconv.ParseInt(string(v.Val), 10, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.FloatVal:
		val, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.HexNum:
		v := strings.ToLower(string(v.Val))
		if strings.HasPrefix(v, "0x") {
			v = v[2:]
		} else if strings.HasPrefix(v, "x") {
			v = strings.Trim(v[1:], "'")
		}

		val, err := strconv.ParseInt(v, 16, 64)
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.HexVal:
		val, err := v.HexDecode()
		if err != nil {
			return nil, err
		}
		return expression.NewLiteral(val), nil
	case sqlparser.BitVal:
		return expression.NewLiteral(v.Val[0] == '1'), nil
	case sqlparser.ValArg:
		return nil, sql.ErrUnsupportedConstruct.New("bind variables")
	}

	return nil, ErrInvalidSQLValType.New(v.Type)
}

func isExprToExpression(c *sqlparser.IsExpr) (sql.Expression, error) {
	e, err := exprToExpression(c.Expr)
	if err != nil {
		return nil, err
	}

	switch c.Operator {
	case sqlparser.IsNullStr:
		return expression.NewComparison(expression.Is, e, expression.NewLiteral(nil)), nil
	case sqlparser.IsNotNullStr:
		return expression.NewComparison(expression.IsNot, e, expression.NewLiteral(nil)), nil
	case sqlparser.IsTrueStr:
		return expression.NewComparison(expression.Is, e, expression.NewLiteral(true)), nil
	case sqlparser.IsNotTrueStr:
		return expression.NewComparison(expression.IsNot, e, expression.NewLiteral(true)), nil
	case sqlparser.IsFalseStr:
		return expression.NewComparison(expression.Is, e, expression.NewLiteral(false)), nil
	case sqlparser.IsNotFalseStr:
		return expression.NewComparison(expression.IsNot, e, expression.NewLiteral(false)), nil
	default:
		return nil, ErrUnsupportedSyntax.New(c)
	}
}

var comparisonOperators = map[string]expression.Operator{
	sqlparser.EqualStr:        expression.Eq,
	sqlparser.NotEqualStr:     expression.NotEq,
	sqlparser.LessThanStr:     expression.Lt,
	sqlparser.LessEqualStr:    expression.LtEq,
	sqlparser.GreaterThanStr:  expression.Gt,
	sqlparser.GreaterEqualStr: expression.GtEq,
	sqlparser.InStr:           expression.In,
	sqlparser.NotInStr:        expression.NotIn,
	sqlparser.LikeStr:         expression.Like,
	sqlparser.NotLikeStr:      expression.NotLike,
}

func comparisonExprToExpression(c *sqlparser.ComparisonExpr) (sql.Expression, error) {
	op, ok := comparisonOperators[c.Operator]
	if !ok {
		return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("%s operator", strings.ToUpper(c.Operator)))
	}

	left, err := exprToExpression(c.Left)
	if err != nil {
		return nil, err
	}

	right, err := exprToExpression(c.Right)
	if err != nil {
		return nil, err
	}

	return expression.NewComparison(op, left, right), nil
}

func unaryExprToExpression(u *sqlparser.UnaryExpr) (sql.Expression, error) {
	e, err := exprToExpression(u.Expr)
	if err != nil {
		return nil, err
	}

	switch u.Operator {
	case sqlparser.UPlusStr:
		return e, nil
	case sqlparser.UMinusStr:
		if lit, ok := e.(*expression.Literal); ok {
			switch v := lit.Value().(type) {
			case int64:
				return expression.NewLiteral(-v), nil
			case float64:
				return expression.NewLiteral(-v), nil
			}
		}
		return expression.NewMinus(expression.NewLiteral(int64(0)), e), nil
	default:
		return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("unary operator %s", u.Operator))
	}
}

func binaryExprToExpression(be *sqlparser.BinaryExpr) (sql.Expression, error) {
	switch be.Operator {
	case
		sqlparser.PlusStr,
		sqlparser.MinusStr,
		sqlparser.MultStr,
		sqlparser.DivStr,
		sqlparser.ShiftLeftStr,
		sqlparser.ShiftRightStr,
		sqlparser.BitAndStr,
		sqlparser.BitOrStr,
		sqlparser.BitXorStr,
		sqlparser.IntDivStr,
		sqlparser.ModStr:

		l, err := exprToExpression(be.Left)
		if err != nil {
			return nil, err
		}

		r, err := exprToExpression(be.Right)
		if err != nil {
			return nil, err
		}

		return expression.NewArithmetic(l, r, be.Operator), nil

	default:
		return nil, sql.ErrUnsupportedConstruct.New(fmt.Sprintf("%s operator", be.Operator))
	}
}

func removeComments(s string) string {
	r := bufio.NewReader(strings.NewReader(s))
	var result []rune
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		switch ru {
		case '\'', '"':
			result = append(result, ru)
			result = append(result, readString(r, ru == '\'')...)
		case '-':
			peeked, err := r.Peek(2)
			if err == nil &&
				len(peeked) == 2 &&
				rune(peeked[0]) == '-' &&
				rune(peeked[1]) == ' ' {
				discardUntilEOL(r)
			} else {
				result = append(result, ru)
			}
		case '/':
			peeked, err := r.Peek(1)
			if err == nil &&
				len(peeked) == 1 &&
				rune(peeked[0]) == '*' {
				// read the char we peeked
				_, _, _ = r.ReadRune()
				discardMultilineComment(r)
			} else {
				result = append(result, ru)
			}
		default:
			result = append(result, ru)
		}
	}
	return string(result)
}

func discardUntilEOL(r *bufio.Reader) {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF || ru == '\n' {
			break
		}
	}
}

func discardMultilineComment(r *bufio.Reader) {
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if ru == '*' {
			peeked, err := r.Peek(1)
			if err == nil && len(peeked) == 1 && rune(peeked[0]) == '/' {
				_, _, _ = r.ReadRune()
				break
			}
		}
	}
}

func readString(r *bufio.Reader, single bool) []rune {
	var result []rune
	var escaped bool
	for {
		ru, _, err := r.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		result = append(result, ru)
		if (!single && ru == '"' && !escaped) ||
			(single && ru == '\'' && !escaped) {
			break
		}
		escaped = false
		if ru == '\\' {
			escaped = true
		}
	}
	return result
}
