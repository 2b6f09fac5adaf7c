package models

import (
	"bytes"
	"encoding/json"
)

// LinkSet is an insertion-ordered snapshot of code -> record.
type LinkSet []LinkRecord

// Get returns the record for code, if present.
func (s LinkSet) Get(code string) (LinkRecord, bool) {
	for _, r := range s {
		if r.Code == code {
			return r, true
		}
	}
	return LinkRecord{}, false
}

// MarshalJSON writes a JSON object whose keys keep the slice order.
func (s LinkSet) MarshalJSON() ([]byte, error) {
	return s.marshal("", "")
}

// MarshalIndent is MarshalJSON with indentation, used for the storage file.
func (s LinkSet) MarshalIndent(indent string) ([]byte, error) {
	return s.marshal("", indent)
}

func (s LinkSet) marshal(prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.Code)
		if err != nil {
			return nil, err
		}
		if rec.Clicks == nil {
			rec.Clicks = []ClickEvent{}
		}
		val, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	if indent == "" {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
