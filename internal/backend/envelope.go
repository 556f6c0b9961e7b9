package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Envelope is the usual success body: {statusCode, message, result}. Some
// endpoints still answer with the legacy "data" field instead of "result".
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Result     *T     `json:"result,omitempty"`
	Data       *T     `json:"data,omitempty"`
}

// Value returns result, falling back to data.
func (e Envelope[T]) Value() (T, bool) {
	if e.Result != nil {
		return *e.Result, true
	}
	if e.Data != nil {
		return *e.Data, true
	}
	var zero T
	return zero, false
}

// ID is a backend numeric identifier. Some endpoints serialize it as a
// string, so both forms are accepted.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*id = ID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
