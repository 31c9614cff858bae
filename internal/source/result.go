package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Result holds either a value or the reason it could not be obtained.
// The zero Reason marks a successful Result.
type Result[T any] struct {
	Value  T
	Reason Reason
	Detail string
}

// OK wraps a successfully obtained value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail builds a failed Result.
func Fail[T any](reason Reason, detail string) Result[T] {
	return Result[T]{Reason: reason, Detail: detail}
}

// Ok reports whether the Result carries a value.
func (r Result[T]) Ok() bool {
	return r.Reason == ""
}

// Get returns the value and whether it is valid.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Ok()
}

// Or returns the value, or def when the Result failed.
func (r Result[T]) Or(def T) T {
	if r.Ok() {
		return r.Value
	}
	return def
}

// Error describes the failure, or returns "" for a successful Result.
func (r Result[T]) Error() string {
	if r.Ok() {
		return ""
	}
	if r.Detail == "" {
		return r.Reason.Message()
	}
	return fmt.Sprintf("%s: %s", r.Reason.Message(), r.Detail)
}

type resultJSON[T any] struct {
	Value  *T     `json:"value,omitempty"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// MarshalJSON encodes a success as {"value": ...} and a failure as
// {"reason": ..., "detail": ...}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Ok() {
		v := r.Value
		return json.Marshal(resultJSON[T]{Value: &v})
	}
	return json.Marshal(resultJSON[T]{Reason: r.Reason, Detail: r.Detail})
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var raw resultJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result[T]{Reason: raw.Reason, Detail: raw.Detail}
	if raw.Value != nil {
		r.Value = *raw.Value
	}
	return nil
}

// Then applies parse to a successful Result. A parse error becomes
// MalformedValue; a failed input is passed through unchanged.
func Then[T, U any](r Result[T], parse func(T) (U, error)) Result[U] {
	if !r.Ok() {
		return Fail[U](r.Reason, r.Detail)
	}
	v, err := parse(r.Value)
	if err != nil {
		return Fail[U](MalformedValue, err.Error())
	}
	return OK(v)
}

// Map applies an infallible conversion to a successful Result.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.Ok() {
		return Fail[U](r.Reason, r.Detail)
	}
	return OK(fn(r.Value))
}

// ParseInt parses a trimmed base-10 integer.
func ParseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ParseUint parses a trimmed base-10 unsigned integer.
func ParseUint(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// ParseFloat parses a trimmed decimal number.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
