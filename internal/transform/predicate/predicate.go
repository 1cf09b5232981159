// Package predicate evaluates filter conditions against records and
// filters tables with AND-composed condition lists.
package predicate

import (
	"strings"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform/schema"
	"github.com/tabshift/tabshift/pkg/types"
)

// Matches evaluates a single condition against a record. A record missing
// the condition's field yields a null value for every comparison; the
// evaluation never fails on data, only on an unknown operator.
func Matches(rec types.Record, cond types.Condition) (bool, error) {
	v := rec.Get(cond.Field)

	switch cond.Operator {
	case types.OpEq:
		return equals(v, cond.Value), nil

	case types.OpNe:
		return !equals(v, cond.Value), nil

	case types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		// Numeric comparison only; non-numeric on either side
		// evaluates false rather than failing.
		fv, ok1 := types.ToFloat(v)
		cv, ok2 := types.ToFloat(cond.Value)
		if !ok1 || !ok2 {
			return false, nil
		}
		switch cond.Operator {
		case types.OpGt:
			return fv > cv, nil
		case types.OpGte:
			return fv >= cv, nil
		case types.OpLt:
			return fv < cv, nil
		default:
			return fv <= cv, nil
		}

	case types.OpContains:
		// Case-sensitive substring test on string representations.
		// A null field never contains anything.
		if v == nil {
			return false, nil
		}
		return strings.Contains(types.Stringify(v), types.Stringify(cond.Value)), nil

	case types.OpIn:
		seq, ok := cond.Value.([]interface{})
		if !ok {
			// A scalar `in` value degrades to membership in a
			// one-element sequence.
			return equals(v, cond.Value), nil
		}
		for _, member := range seq {
			if equals(v, member) {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, errors.Validation(errors.CodeUnknownOperator,
			"unknown operator: %q", cond.Operator)
	}
}

// MatchesAll evaluates a list of conditions against a record with AND
// semantics. An empty list matches everything.
func MatchesAll(rec types.Record, conds []types.Condition) (bool, error) {
	for _, cond := range conds {
		ok, err := Matches(rec, cond)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Filter returns the records matching all conditions, preserving input
// order. Every condition's field must appear in at least one record.
func Filter(data types.Table, conds []types.Condition) (types.Table, error) {
	sch := schema.Infer(data)
	for _, cond := range conds {
		if !cond.Operator.Valid() {
			return nil, errors.Validation(errors.CodeUnknownOperator,
				"unknown operator: %q", cond.Operator)
		}
		if !sch.HasColumn(cond.Field) {
			return nil, errors.Validation(errors.CodeUnknownColumn,
				"field %q not found in data", cond.Field).WithDetail("field", cond.Field)
		}
	}

	out := make(types.Table, 0, len(data))
	for _, rec := range data {
		ok, err := MatchesAll(rec, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// equals implements eq/ne coercion: both sides numeric compare
// numerically, both boolean compare directly, nulls only equal nulls,
// and mismatched kinds fall back to string comparison.
func equals(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	fa, aOk := types.ToFloat(a)
	fb, bOk := types.ToFloat(b)
	if aOk && bOk {
		return fa == fb
	}

	ba, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		return ba == bb
	}

	return types.Stringify(a) == types.Stringify(b)
}
