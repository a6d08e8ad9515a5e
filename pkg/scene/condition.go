package scene

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ConditionOp is the comparison a Choice applies to the clicked tile.
type ConditionOp string

const (
	OpEquals    ConditionOp = "equals"
	OpNotEquals ConditionOp = "not_equals"
	// OpInvalid marks a condition that could not be understood. It never matches.
	OpInvalid ConditionOp = "invalid"
)

// Condition is a predicate over the clicked tile id.
type Condition struct {
	Op   ConditionOp `json:"op"`
	Tile string      `json:"tile,omitempty"`
	Raw  string      `json:"raw,omitempty"` // original text when Op is OpInvalid
}

// Equals matches exactly one tile.
func Equals(tile string) Condition {
	return Condition{Op: OpEquals, Tile: tile}
}

// NotEquals matches every tile except one.
func NotEquals(tile string) Condition {
	return Condition{Op: OpNotEquals, Tile: tile}
}

// Matches reports whether tileID satisfies the condition.
func (c Condition) Matches(tileID string) bool {
	switch c.Op {
	case OpEquals:
		return tileID == c.Tile
	case OpNotEquals:
		return tileID != c.Tile
	}
	return false
}

// Valid reports whether the condition is one of the supported forms.
func (c Condition) Valid() bool {
	return (c.Op == OpEquals || c.Op == OpNotEquals) && c.Tile != ""
}

// String renders the condition in the legacy expression form.
func (c Condition) String() string {
	switch c.Op {
	case OpEquals:
		return fmt.Sprintf("gridId === '%s'", c.Tile)
	case OpNotEquals:
		return fmt.Sprintf("gridId !== '%s'", c.Tile)
	case OpInvalid:
		return c.Raw
	}
	return ""
}

var conditionExprRegex = regexp.MustCompile(`^\s*gridId\s*(===|!==)\s*'([^']*)'\s*$`)

// ParseCondition converts the legacy `gridId === 'K7'` / `gridId !== 'K7'`
// expression into a Condition.
func ParseCondition(expr string) (Condition, error) {
	m := conditionExprRegex.FindStringSubmatch(expr)
	if m == nil || m[2] == "" {
		return Condition{Op: OpInvalid, Raw: expr}, fmt.Errorf("unsupported condition %q", expr)
	}
	if m[1] == "===" {
		return Equals(m[2]), nil
	}
	return NotEquals(m[2]), nil
}

// UnmarshalJSON accepts either the legacy expression string or the object form.
// Unsupported input decodes to an OpInvalid condition instead of failing, so
// one bad choice cannot make a whole scene unreadable.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var expr string
	if err := json.Unmarshal(data, &expr); err == nil {
		parsed, _ := ParseCondition(expr)
		*c = parsed
		return nil
	}

	type Alias Condition
	var aux Alias
	if err := json.Unmarshal(data, &aux); err != nil {
		*c = Condition{Op: OpInvalid, Raw: string(data)}
		return nil
	}
	*c = Condition(aux)
	if c.Op != OpEquals && c.Op != OpNotEquals {
		c.Raw = string(data)
		c.Op = OpInvalid
	}
	return nil
}
