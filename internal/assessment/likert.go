package assessment

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ScoreOption is one answer on the five-point frequency scale.
// The zero value is Never.
type ScoreOption uint8

const (
	Never ScoreOption = iota
	Rarely
	Sometimes
	Often
	VeryOften
)

// MaxWeight is the weight of the highest option on the scale.
const MaxWeight = 4

var ErrUnknownOption = errors.New("unknown score option")

// Scale returns the full scale in ascending weight order.
func Scale() []ScoreOption {
	return []ScoreOption{Never, Rarely, Sometimes, Often, VeryOften}
}

// Weight returns the integer weight of o. ok is false for values outside the scale,
// which can only be produced by an explicit conversion.
func (o ScoreOption) Weight() (w int, ok bool) {
	switch o {
	case Never:
		return 0, true
	case Rarely:
		return 1, true
	case Sometimes:
		return 2, true
	case Often:
		return 3, true
	case VeryOften:
		return 4, true
	}
	return 0, false
}

func (o ScoreOption) Valid() bool {
	_, ok := o.Weight()
	return ok
}

func (o ScoreOption) String() string {
	switch o {
	case Never:
		return "Never"
	case Rarely:
		return "Rarely"
	case Sometimes:
		return "Sometimes"
	case Often:
		return "Often"
	case VeryOften:
		return "Very Often"
	}
	return fmt.Sprintf("ScoreOption(%d)", uint8(o))
}

// ParseScoreOption maps a display label back to its option.
func ParseScoreOption(label string) (ScoreOption, error) {
	switch label {
	case "Never":
		return Never, nil
	case "Rarely":
		return Rarely, nil
	case "Sometimes":
		return Sometimes, nil
	case "Often":
		return Often, nil
	case "Very Often":
		return VeryOften, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, label)
}

func (o ScoreOption) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOption, uint8(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText rejects labels that are not on the scale.
func (o *ScoreOption) UnmarshalText(b []byte) error {
	v, err := ParseScoreOption(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// UnmarshalJSON only accepts a label string. A null answer would otherwise
// decode to the zero value and count as an answered Never.
func (o *ScoreOption) UnmarshalJSON(b []byte) error {
	var label *string
	if err := json.Unmarshal(b, &label); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownOption, b)
	}
	if label == nil {
		return fmt.Errorf("%w: null", ErrUnknownOption)
	}
	return o.UnmarshalText([]byte(*label))
}

func (o ScoreOption) MarshalYAML() (interface{}, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOption, uint8(o))
	}
	return o.String(), nil
}

func (o *ScoreOption) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := ParseScoreOption(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*o = v
	return nil
}
