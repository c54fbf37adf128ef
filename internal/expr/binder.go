package expr

import (
	"fmt"

	"github.com/pkg/errors"
)

// DefaultBinder is the built-in LambdaBinder: it creates a fresh, typed
// variable per parameter and rewrites the body so every reference to an
// old parameter id points at the new variable. Id-based matching keeps
// shadowed names in nested lambdas intact, since every placeholder owns a
// distinct id.
func DefaultBinder(lf *LambdaFunction, params []ParamSpec) (*LambdaFunction, error) {
	if len(lf.Params) != len(params) {
		return nil, fmt.Errorf("lambda has %d parameters, expected %d", len(lf.Params), len(params))
	}
	fresh := make([]*NamedLambdaVariable, len(params))
	byOld := make(map[ExprID]*NamedLambdaVariable, len(params))
	for i, p := range lf.Params {
		fresh[i] = NewNamedLambdaVariable(p.Name, params[i].Type, params[i].Nullable)
		byOld[p.ID] = fresh[i]
	}
	body := TransformUp(lf.Body, func(e Expression) Expression {
		if v, ok := e.(*NamedLambdaVariable); ok {
			if nv, ok := byOld[v.ID]; ok {
				return nv
			}
		}
		return e
	})
	return &LambdaFunction{Body: body, Params: fresh, Hidden: lf.Hidden}, nil
}

// BindHOFs walks a tree bottom-up and binds every higher-order function
// whose arguments have resolved, then type-checks it. Binding the outer
// function types its lambda parameters, which can make nested
// higher-order functions inside the lambda body bindable, so freshly
// bound subtrees are walked again until nothing is left to bind.
func BindHOFs(e Expression, binder LambdaBinder) (Expression, error) {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]Expression, len(children))
		changed := false
		for i, c := range children {
			b, err := BindHOFs(c, binder)
			if err != nil {
				return nil, err
			}
			newChildren[i] = b
			if b != c {
				changed = true
			}
		}
		if changed {
			e = e.WithChildren(newChildren)
		}
	}
	h, ok := e.(HigherOrderFunction)
	if !ok {
		return e, nil
	}
	if !hofResolved(h) && ArgumentsResolved(h) {
		bound, err := h.Bind(binder)
		if err != nil {
			return nil, errors.Wrapf(err, "binding %v", e)
		}
		bound, err = BindHOFs(bound, binder)
		if err != nil {
			return nil, err
		}
		h, ok = bound.(HigherOrderFunction)
		if !ok {
			return bound, nil
		}
		e = bound
	}
	// Input checks apply once the node is fully resolved; a node still
	// waiting on an enclosing bind is checked on a later pass.
	if hofResolved(h) {
		if tc := h.CheckInputDataTypes(); !tc.OK() {
			return nil, errors.Wrapf(tc.Err(), "type check of %v", e)
		}
	}
	return e, nil
}

// Bind binds a tree with the default binder.
func Bind(e Expression) (Expression, error) {
	return BindHOFs(e, DefaultBinder)
}
