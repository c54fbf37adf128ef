// Command hofdemo builds a handful of higher-order expressions, binds
// them, and prints the evaluation results. Useful for eyeballing binder
// and evaluator behaviour without wiring the library into an engine.
package main

import (
	"flag"
	"fmt"
	"log"

	lambdasql "github.com/SimonWaldherr/lambdaSQL"
	"github.com/SimonWaldherr/lambdaSQL/internal/config"
	"github.com/SimonWaldherr/lambdaSQL/internal/expr"
)

func main() {
	limitsPath := flag.String("limits", "", "optional YAML file with evaluator limits")
	flag.Parse()

	limits := config.DefaultLimits()
	if *limitsPath != "" {
		var err error
		limits, err = config.Load(*limitsPath)
		if err != nil {
			log.Fatalf("load limits: %v", err)
		}
	}
	log.Printf("max map pairs: %d", limits.MaxMapPairs)

	intArr := lambdasql.ArrayOf(lambdasql.Int, false)

	// transform([32,97], (y,i) -> y + i)
	y, i := lambdasql.Var("y"), lambdasql.Var("i")
	withIndex := lambdasql.Transform(
		lambdasql.MustLit([]any{32, 97}, intArr),
		lambdasql.Lambda(lambdasql.Op("+", y, i), y, i),
	)
	show("transform([32,97], (y,i) -> y+i)", withIndex)

	// filter([1,2,3], x -> x % 2 = 1)
	x := lambdasql.Var("x")
	odds := lambdasql.Filter(
		lambdasql.MustLit([]any{1, 2, 3}, intArr),
		lambdasql.Lambda(
			lambdasql.Op("=", lambdasql.Op("%", x, lambdasql.MustLit(2, lambdasql.Int)), lambdasql.MustLit(1, lambdasql.Int)),
			x,
		),
	)
	show("filter([1,2,3], x -> x%2=1)", odds)

	// aggregate([1,2,3], 0, (acc,e) -> acc + e, acc -> acc * 10)
	acc, e := lambdasql.Var("acc"), lambdasql.Var("e")
	acc2 := lambdasql.Var("acc")
	agg := lambdasql.Aggregate(
		lambdasql.MustLit([]any{1, 2, 3}, intArr),
		lambdasql.MustLit(0, lambdasql.Int),
		lambdasql.Lambda(lambdasql.Op("+", acc, e), acc, e),
		lambdasql.Lambda(lambdasql.Op("*", acc2, lambdasql.MustLit(10, lambdasql.Int)), acc2),
	)
	show("aggregate([1,2,3], 0, +, *10)", agg)

	// map_zip_with({1:a,2:b}, {1:x,2:y}, (k,v1,v2) -> concat(v1,v2))
	strMap := lambdasql.MapOf(lambdasql.Int, lambdasql.String, false)
	k, v1, v2 := lambdasql.Var("k"), lambdasql.Var("v1"), lambdasql.Var("v2")
	zipped := lambdasql.MapZipWith(
		lambdasql.MustLit(lambdasql.NewMap(int32(1), "a", int32(2), "b"), strMap),
		lambdasql.MustLit(lambdasql.NewMap(int32(1), "x", int32(2), "y"), strMap),
		lambdasql.Lambda(lambdasql.Concat(v1, v2), k, v1, v2),
	)
	if mz, ok := zipped.(*expr.MapZipWith); ok {
		mz.Limit = limits.MaxMapPairs
	}
	show("map_zip_with({1:a,2:b}, {1:x,2:y}, concat)", zipped)
}

func show(label string, e lambdasql.Expression) {
	bound, err := lambdasql.Bind(e)
	if err != nil {
		log.Fatalf("%s: bind: %v", label, err)
	}
	out, err := lambdasql.Eval(bound, nil)
	if err != nil {
		log.Fatalf("%s: eval: %v", label, err)
	}
	fmt.Printf("%-50s => %s\n", label, render(out))
}

func render(v any) string {
	switch x := v.(type) {
	case lambdasql.ArrayData:
		s := "["
		for i := 0; i < x.NumElements(); i++ {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%v", x.Get(i))
		}
		return s + "]"
	case lambdasql.MapData:
		s := "{"
		keys, vals := x.KeyArray(), x.ValueArray()
		for i := 0; i < x.NumEntries(); i++ {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%v: %v", keys.Get(i), vals.Get(i))
		}
		return s + "}"
	}
	return fmt.Sprintf("%v", v)
}
