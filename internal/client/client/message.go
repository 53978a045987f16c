package client

import (
	"bytes"
	"encoding/json"
)

// detailOrFirstError picks the message of a rejected login: the "detail"
// field when present, otherwise the first field error.
func detailOrFirstError(body []byte) string {
	var d struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &d); err == nil && d.Detail != "" {
		return d.Detail
	}
	return firstFieldError(body)
}

// firstFieldError returns the first error message in a validation response,
// walking fields in document order. A field's value is either a string or a
// list whose first string element is taken. A top-level list is treated as
// a single field. Empty when nothing usable is found.
func firstFieldError(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	if body[0] == '[' {
		return messageOf(body)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return ""
	}

	for dec.More() {
		if _, err := dec.Token(); err != nil { // field name
			return ""
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return ""
		}
		if msg := messageOf(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func messageOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		var first string
		if err := json.Unmarshal(list[0], &first); err == nil {
			return first
		}
	}
	return ""
}
