package query

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Type is the declared type of a column. Convert is the single coercion
// point of the engine: every backend-native value passes through it on
// its way into a canonical result.
type Type interface {
	// Name of the type as it appears in catalog snapshots.
	Name() string
	// Check returns whether the value is already in canonical form.
	Check(v interface{}) bool
	// Convert coerces the value to canonical form. nil converts to nil.
	Convert(v interface{}) (interface{}, error)
	// Compare two values of this type. Nils sort first.
	Compare(a, b interface{}) (int, error)
}

var (
	// Integer is a 64-bit signed integer column type.
	Integer Type = integerType{}
	// Real is a 64-bit floating point column type.
	Real Type = realType{}
	// Text is a string column type.
	Text Type = textType{}
	// Date is a point-in-time column type.
	Date Type = dateType{}
	// Boolean is the type of predicate results. It never appears in a
	// catalog column but expressions evaluate to it.
	Boolean Type = booleanType{}
)

// TypeFromString resolves a type by its catalog name.
func TypeFromString(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "integer", "int":
		return Integer, nil
	case "real", "float":
		return Real, nil
	case "text", "string":
		return Text, nil
	case "date":
		return Date, nil
	case "boolean", "bool":
		return Boolean, nil
	default:
		return nil, ErrInvalidType.New(s)
	}
}

func compareNulls(a, b interface{}) (int, bool) {
	if a == nil && b == nil {
		return 0, true
	}
	if a == nil {
		return -1, true
	}
	if b == nil {
		return 1, true
	}
	return 0, false
}

type integerType struct{}

func (integerType) Name() string { return "integer" }

func (integerType) Check(v interface{}) bool {
	_, ok := v.(int64)
	return ok
}

func (integerType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, ErrInvalidType.New(v)
	}
	return n, nil
}

func (t integerType) Compare(a, b interface{}) (int, error) {
	if c, done := compareNulls(a, b); done {
		return c, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	ai, bi := av.(int64), bv.(int64)
	switch {
	case ai < bi:
		return -1, nil
	case ai > bi:
		return 1, nil
	default:
		return 0, nil
	}
}

type realType struct{}

func (realType) Name() string { return "real" }

func (realType) Check(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

func (realType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, ErrInvalidType.New(v)
	}
	return f, nil
}

func (t realType) Compare(a, b interface{}) (int, error) {
	if c, done := compareNulls(a, b); done {
		return c, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	af, bf := av.(float64), bv.(float64)
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

type textType struct{}

func (textType) Name() string { return "text" }

func (textType) Check(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func (textType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, ErrInvalidType.New(v)
	}
	return s, nil
}

func (t textType) Compare(a, b interface{}) (int, error) {
	if c, done := compareNulls(a, b); done {
		return c, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	return strings.Compare(av.(string), bv.(string)), nil
}

type dateType struct{}

func (dateType) Name() string { return "date" }

func (dateType) Check(v interface{}) bool {
	_, ok := v.(time.Time)
	return ok
}

func (dateType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, ErrInvalidType.New(v)
	}
	return t, nil
}

func (d dateType) Compare(a, b interface{}) (int, error) {
	if c, done := compareNulls(a, b); done {
		return c, nil
	}
	av, err := d.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := d.Convert(b)
	if err != nil {
		return 0, err
	}
	at, bt := av.(time.Time), bv.(time.Time)
	switch {
	case at.Before(bt):
		return -1, nil
	case at.After(bt):
		return 1, nil
	default:
		return 0, nil
	}
}

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (booleanType) Check(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

func (booleanType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, ErrInvalidType.New(v)
	}
	return b, nil
}

func (t booleanType) Compare(a, b interface{}) (int, error) {
	if c, done := compareNulls(a, b); done {
		return c, nil
	}
	av, err := t.Convert(a)
	if err != nil {
		return 0, err
	}
	bv, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	ab, bb := av.(bool), bv.(bool)
	switch {
	case ab == bb:
		return 0, nil
	case !ab:
		return -1, nil
	default:
		return 1, nil
	}
}
