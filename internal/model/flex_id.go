package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID is a record id that can be unmarshaled from either a JSON number
// or a JSON string. It is always marshaled as a string.
type FlexID uint

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q, %w", s, err)
		}

		*f = FlexID(v)
		return nil
	}

	return fmt.Errorf("invalid id %s, expected number or string", data)
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f FlexID) String() string {
	return strconv.FormatUint(uint64(f), 10)
}
