package rgg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the scalar type stored in a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "unknown"
}

var ErrKindMismatch = errors.New("value kind mismatch")

// Value is a tagged numeric scalar, either an int32 or a float32. It is the
// unit of attribute storage and comparison. Two Values are equal when both
// the tag and the raw stored bits are equal; there is no cross-type
// coercion on equality.
type Value struct {
	kind Kind
	bits uint32
}

func NewInt(i int32) Value {
	return Value{kind: KindInt, bits: uint32(i)}
}

func NewFloat(f float32) Value {
	return Value{kind: KindFloat, bits: math.Float32bits(f)}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the stored integer. Fails when the Value holds a float.
func (v Value) Int() (int32, error) {
	if v.kind != KindInt {
		return 0, fmt.Errorf("%w: stored %s, requested int", ErrKindMismatch, v.kind)
	}
	return int32(v.bits), nil
}

// Float returns the stored float. Fails when the Value holds an int.
func (v Value) Float() (float32, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("%w: stored %s, requested float", ErrKindMismatch, v.kind)
	}
	return math.Float32frombits(v.bits), nil
}

// AsFloat reads the value numerically regardless of its tag. Used for
// ordering comparisons and expression contexts.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(int32(v.bits))
	}
	return float64(math.Float32frombits(v.bits))
}

func (v Value) String() string {
	if v.kind == KindInt {
		return strconv.FormatInt(int64(int32(v.bits)), 10)
	}
	return strconv.FormatFloat(float64(math.Float32frombits(v.bits)), 'g', -1, 32)
}
