package expression

import "github.com/src-d/go-sql-planner/sql"

// TransformFunc is a function that given an expression will return that
// expression as is or transformed along with an error, if any.
type TransformFunc func(sql.Expression) (sql.Expression, error)

// TransformUp applies a transformation function to the given expression from
// the bottom up.
func TransformUp(e sql.Expression, f TransformFunc) (sql.Expression, error) {
	children := e.Children()
	if len(children) == 0 {
		return f(e)
	}

	newChildren := make([]sql.Expression, len(children))
	for i, c := range children {
		c, err := TransformUp(c, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = c
	}

	e, err := e.WithChildren(newChildren...)
	if err != nil {
		return nil, err
	}

	return f(e)
}

// TransformDown applies a transformation function to the given expression
// from the top down. When f returns a different expression, its children are
// not transformed.
func TransformDown(e sql.Expression, f TransformFunc) (sql.Expression, error) {
	ne, err := f(e)
	if err != nil {
		return nil, err
	}

	if ne != e {
		return ne, nil
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}

	newChildren := make([]sql.Expression, len(children))
	for i, c := range children {
		c, err := TransformDown(c, f)
		if err != nil {
			return nil, err
		}
		newChildren[i] = c
	}

	return e.WithChildren(newChildren...)
}
