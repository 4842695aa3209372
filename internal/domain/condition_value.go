package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ConditionKind tags the variant held by a ConditionValue.
type ConditionKind uint8

const (
	KindBool ConditionKind = iota
	KindString
	KindNumber
)

// ConditionValue is a closed bool|string|number variant. Profiles carry an
// open string-keyed map of these; criteria compare against them with exact
// equality, so a numeric 1 never equals boolean true or string "1".
type ConditionValue struct {
	kind ConditionKind
	b    bool
	s    string
	n    float64
}

func Bool(v bool) ConditionValue      { return ConditionValue{kind: KindBool, b: v} }
func String(v string) ConditionValue  { return ConditionValue{kind: KindString, s: v} }
func Number(v float64) ConditionValue { return ConditionValue{kind: KindNumber, n: v} }

// Kind returns the variant tag.
func (v ConditionValue) Kind() ConditionKind { return v.kind }

// Equal reports exact equality: same kind and same value.
func (v ConditionValue) Equal(o ConditionValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	default:
		return v.n == o.n
	}
}

// String renders the value for match reason labels and logs.
func (v ConditionValue) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	}
}

// MarshalJSON emits the underlying primitive so condition maps round-trip
// through JSONB columns and API payloads unchanged.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.s)
	default:
		return json.Marshal(v.n)
	}
}

// UnmarshalJSON accepts a JSON bool, string, or number.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case bool:
		*v = Bool(t)
	case string:
		*v = String(t)
	case float64:
		*v = Number(t)
	default:
		return fmt.Errorf("condition value must be bool, string, or number, got %T", raw)
	}
	return nil
}
