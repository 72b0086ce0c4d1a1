package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// LooseString accepts any JSON value. Only JSON strings carry a value; every
// other kind decodes to the empty string instead of failing the request.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = LooseString(v)
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

// Consent keeps the raw JSON value of the consent checkbox.
type Consent struct {
	raw json.RawMessage
}

func (c *Consent) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], bytes.TrimSpace(data)...)
	return nil
}

func (c Consent) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// StringConsent builds a consent value from a form-encoded field.
func StringConsent(v string) Consent {
	data, _ := json.Marshal(v)
	return Consent{raw: data}
}

func BoolConsent(v bool) Consent {
	return Consent{raw: []byte(strconv.FormatBool(v))}
}

func NumberConsent(v float64) Consent {
	return Consent{raw: []byte(strconv.FormatFloat(v, 'f', -1, 64))}
}

// Given reports whether the consent is exactly true, "true" or 1.
func (c Consent) Given() bool {
	switch v := c.decode().(type) {
	case bool:
		return v
	case string:
		return v == "true"
	case float64:
		return v == 1
	default:
		return false
	}
}

// Bool applies the form's truthiness rules: absent, null, false, 0, NaN and
// the empty string are false, everything else is true.
func (c Consent) Bool() bool {
	switch v := c.decode().(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}

func (c Consent) decode() any {
	if len(c.raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(c.raw, &v); err != nil {
		return nil
	}
	return v
}
