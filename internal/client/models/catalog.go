package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// InputKind enumerates how a measurement type is captured. The set is
// closed: anything else coming off the wire is rejected at decode time.
type InputKind string

const (
	KindNumber   InputKind = "number"
	KindBoolean  InputKind = "boolean"
	KindText     InputKind = "text"
	KindTextarea InputKind = "textarea"
	KindSelect   InputKind = "select"
	KindPhoto    InputKind = "photo"
)

func (k InputKind) valid() bool {
	switch k {
	case KindNumber, KindBoolean, KindText, KindTextarea, KindSelect, KindPhoto:
		return true
	}
	return false
}

// NumericSpec constrains number inputs.
type NumericSpec struct {
	Min           *float64
	Max           *float64
	DecimalPlaces int
	Unit          string
}

// SelectSpec constrains select inputs to a fixed option list.
type SelectSpec struct {
	Options []string
}

// TextSpec constrains text and textarea inputs.
type TextSpec struct {
	MaxLength int
}

// MeasurementType is one catalog entry describing a kind of reading
// (e.g. pH, chlorine). Exactly one of the spec pointers matching Kind is
// set; the others are nil.
type MeasurementType struct {
	ID       string
	Name     string
	Kind     InputKind
	Required bool

	Numeric *NumericSpec
	Select  *SelectSpec
	Text    *TextSpec
}

// measurementTypeWire mirrors the backend row shape.
type measurementTypeWire struct {
	ID            string `json:"id"`
	Name          string `json:"nome"`
	InputType     string `json:"input_type"`
	Range         *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"range,omitempty"`
	DecimalPlaces int      `json:"decimal_places,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	Options       []string `json:"options,omitempty"`
	Validation    *struct {
		Required  bool `json:"required"`
		MaxLength int  `json:"max_length,omitempty"`
	} `json:"validation_rules,omitempty"`
}

func (m *MeasurementType) UnmarshalJSON(b []byte) error {
	var w measurementTypeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	kind := InputKind(w.InputType)
	if kind == "" {
		kind = KindNumber
	}
	if !kind.valid() {
		return fmt.Errorf("unknown input type %q for measurement type %q", w.InputType, w.ID)
	}

	*m = MeasurementType{ID: w.ID, Name: w.Name, Kind: kind}
	if w.Validation != nil {
		m.Required = w.Validation.Required
	}

	switch kind {
	case KindNumber:
		spec := &NumericSpec{DecimalPlaces: w.DecimalPlaces, Unit: w.Unit}
		if w.Range != nil {
			spec.Min, spec.Max = w.Range.Min, w.Range.Max
		}
		m.Numeric = spec
	case KindSelect:
		m.Select = &SelectSpec{Options: w.Options}
	case KindText, KindTextarea:
		spec := &TextSpec{}
		if w.Validation != nil {
			spec.MaxLength = w.Validation.MaxLength
		}
		m.Text = spec
	}
	return nil
}

func (m MeasurementType) MarshalJSON() ([]byte, error) {
	w := measurementTypeWire{ID: m.ID, Name: m.Name, InputType: string(m.Kind)}

	if m.Numeric != nil {
		w.DecimalPlaces = m.Numeric.DecimalPlaces
		w.Unit = m.Numeric.Unit
		if m.Numeric.Min != nil || m.Numeric.Max != nil {
			w.Range = &struct {
				Min *float64 `json:"min"`
				Max *float64 `json:"max"`
			}{m.Numeric.Min, m.Numeric.Max}
		}
	}
	if m.Select != nil {
		w.Options = m.Select.Options
	}

	maxLen := 0
	if m.Text != nil {
		maxLen = m.Text.MaxLength
	}
	if m.Required || maxLen > 0 {
		w.Validation = &struct {
			Required  bool `json:"required"`
			MaxLength int  `json:"max_length,omitempty"`
		}{m.Required, maxLen}
	}

	return json.Marshal(w)
}

// Validate checks a raw user-entered value against the type's constraints
// and returns the numeric value to store on the measurement item. For
// non-numeric kinds the numeric value is 0 or 1 (boolean true).
func (m MeasurementType) Validate(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		if m.Required {
			return 0, fmt.Errorf("%s: value is required", m.Name)
		}
		return 0, nil
	}

	switch m.Kind {
	case KindNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: not a number: %q", m.Name, raw)
		}
		if m.Numeric != nil {
			if m.Numeric.Min != nil && v < *m.Numeric.Min {
				return 0, fmt.Errorf("%s: %v is below minimum %v", m.Name, v, *m.Numeric.Min)
			}
			if m.Numeric.Max != nil && v > *m.Numeric.Max {
				return 0, fmt.Errorf("%s: %v is above maximum %v", m.Name, v, *m.Numeric.Max)
			}
		}
		return v, nil

	case KindBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "sim", "1":
			return 1, nil
		case "false", "no", "nao", "não", "0":
			return 0, nil
		}
		return 0, fmt.Errorf("%s: expected yes/no, got %q", m.Name, raw)

	case KindSelect:
		if m.Select != nil {
			for i, opt := range m.Select.Options {
				if strings.EqualFold(opt, raw) {
					return float64(i), nil
				}
			}
		}
		return 0, fmt.Errorf("%s: %q is not one of the allowed options", m.Name, raw)

	case KindText, KindTextarea:
		if m.Text != nil && m.Text.MaxLength > 0 && len(raw) > m.Text.MaxLength {
			return 0, fmt.Errorf("%s: text exceeds %d characters", m.Name, m.Text.MaxLength)
		}
		return 0, nil

	case KindPhoto:
		// Photo presence is validated when the submission is assembled.
		return 0, nil
	}

	return 0, fmt.Errorf("%s: unsupported input kind %q", m.Name, m.Kind)
}
