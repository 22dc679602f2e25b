package models

import (
	"encoding/json"
	"strconv"
)

// FlexString is a string that can be unmarshaled from either a JSON string or
// number. Imported resumes carry values like GPA as either "3.8" or 3.8.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexString(strconv.FormatBool(b))
		return nil
	}

	// null and anything else
	*f = ""
	return nil
}

// String returns the underlying string.
func (f FlexString) String() string {
	return string(f)
}
