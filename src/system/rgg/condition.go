package rgg

// ConditionKind selects the comparison a Condition performs.
type ConditionKind uint8

const (
	ConditionEquals ConditionKind = iota
	ConditionLessThan
	ConditionGreaterThan
	ConditionLessOrEqual
	ConditionGreaterOrEqual
	ConditionRange
)

// Condition is a predicate over a Value, used by pattern nodes to constrain
// candidate attribute values. Comparisons use the natural numeric ordering
// of the stored scalars, so an int bound checks cleanly against a float
// candidate and vice versa.
type Condition struct {
	Kind  ConditionKind
	Value Value
	// Upper is only set for ConditionRange.
	Upper Value
}

func Equals(v Value) Condition {
	return Condition{Kind: ConditionEquals, Value: v}
}

func LessThan(v Value) Condition {
	return Condition{Kind: ConditionLessThan, Value: v}
}

func GreaterThan(v Value) Condition {
	return Condition{Kind: ConditionGreaterThan, Value: v}
}

func LessOrEqual(v Value) Condition {
	return Condition{Kind: ConditionLessOrEqual, Value: v}
}

func GreaterOrEqual(v Value) Condition {
	return Condition{Kind: ConditionGreaterOrEqual, Value: v}
}

// Range checks lo <= v <= hi. Inclusive on both ends.
func Range(lo, hi Value) Condition {
	return Condition{Kind: ConditionRange, Value: lo, Upper: hi}
}

// Check compares the concrete scalar v against the stored bound(s).
func (c Condition) Check(v Value) bool {
	candidate := v.AsFloat()
	bound := c.Value.AsFloat()
	switch c.Kind {
	case ConditionEquals:
		return candidate == bound
	case ConditionLessThan:
		return candidate < bound
	case ConditionGreaterThan:
		return candidate > bound
	case ConditionLessOrEqual:
		return candidate <= bound
	case ConditionGreaterOrEqual:
		return candidate >= bound
	case ConditionRange:
		return bound <= candidate && candidate <= c.Upper.AsFloat()
	}
	return false
}
