// Package assembly merges a probe's JSON object with auxiliary fields and
// renders the result in canonical form.
package assembly

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"
)

// Document is a JSON object whose top-level keys keep the order in which
// they were first seen. Values are held as raw JSON so nested probe data
// passes through untouched.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// ParseDocument parses raw as exactly one JSON object.
// Duplicate keys resolve last-write-wins at the position of the first occurrence.
func ParseDocument(raw []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Message: "probe output is empty"}
		}
		return nil, &ParseError{Message: "probe output is not valid JSON", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ParseError{Message: "probe output is not a JSON object"}
	}

	doc := NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Message: "probe output is not valid JSON", Cause: err}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &ParseError{Message: "object key is not a string"}
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, &ParseError{Message: "probe output is not valid JSON", Cause: err}
		}
		doc.setRaw(key, toValidUTF8(value))
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, &ParseError{Message: "probe output is not valid JSON", Cause: err}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, &ParseError{Message: "unexpected data after JSON object"}
		}
		return nil, &ParseError{Message: "unexpected data after JSON object", Cause: err}
	}

	return doc, nil
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Get returns the raw JSON value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Set encodes value and stores it under key, replacing any existing value in place.
func (d *Document) Set(key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return &EncodeError{Key: key, Cause: err}
	}
	d.setRaw(key, raw)
	return nil
}

// Merge copies every key of other into d. Values from other win on collision.
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		d.setRaw(key, other.values[key])
	}
}

func (d *Document) setRaw(key string, value json.RawMessage) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// MarshalJSON renders the document compactly, keys in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(key)
		if err != nil {
			return nil, &EncodeError{Key: key, Cause: err}
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := json.Compact(&buf, d.values[key]); err != nil {
			return nil, &EncodeError{Key: key, Cause: err}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Pretty renders the document with two-space indentation and a trailing newline.
func (d *Document) Pretty() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// encode marshals v without HTML escaping; manifests are usually XML.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// toValidUTF8 replaces each invalid byte with U+FFFD, matching what the
// decoder does to object keys. Invalid bytes can only occur inside strings.
func toValidUTF8(raw json.RawMessage) json.RawMessage {
	if utf8.Valid(raw) {
		return raw
	}
	out := make([]byte, 0, len(raw)+8)
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
		} else {
			out = append(out, raw[:size]...)
		}
		raw = raw[size:]
	}
	return out
}
