package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetadataEntry is one key/value pair of case metadata.
type MetadataEntry struct {
	Key   string
	Value string
}

// Metadata is an ordered string-to-string mapping. It carries schema
// identifiers and free-form extension fields; insertion order is preserved
// across persistence, which plain Go maps cannot guarantee.
type Metadata []MetadataEntry

// Get returns the value for key and whether it was present.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set updates an existing key in place or appends a new entry.
func (m *Metadata) Set(key, value string) {
	for i, e := range *m {
		if e.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, MetadataEntry{Key: key, Value: value})
}

// MarshalJSON renders the metadata as a JSON object in insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order via the token
// stream.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata: expected JSON object")
	}

	entries := Metadata{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata: value for %q must be a string: %w", key, err)
		}
		entries = append(entries, MetadataEntry{Key: key, Value: value})
	}
	*m = entries
	return nil
}
