package parsers

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// flexString accepts a JSON string, number or bool. null, "" and "null" decode as absent.
type flexString struct {
	Value string
	Set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = flexString{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else if b[0] == '{' || b[0] == '[' {
		return nil
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if isAbsent(s) {
		return nil
	}
	f.Value, f.Set = s, true
	return nil
}

// flexInt accepts a JSON number or a string holding a leading integer ("2", "2개").
// Anything else decodes as absent rather than failing the whole reply.
type flexInt struct {
	Value int
	Set   bool
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = flexInt{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if v, ok := parseLeadingInt(s); ok {
			f.Value, f.Set = v, true
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
		return nil
	}
	f.Value, f.Set = int(n), true
	return nil
}

func (f flexInt) ptr() *int {
	if !f.Set {
		return nil
	}
	v := f.Value
	return &v
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if isAbsent(s) {
		return 0, false
	}
	m := leadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isAbsent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "nil", "undefined":
		return true
	}
	return false
}
