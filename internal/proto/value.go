// Package proto implements the wire value model for the edge
// address tracking protocol carried over the tracking endpoint's
// transfers (see controller/tracking.go).
//
// Full AMQP frame/type encoding is out of scope for this module (the
// transport is assumed, per the governing specification); this package
// only needs the handful of scalar/list shapes the tracking protocol's
// message body actually uses, modeled after the encode/decode split in
// go-amqp's encode.go and frames.go.
package proto

import (
	"github.com/pkg/errors"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindBinary Kind = iota
	KindBool
	KindList
)

// Value is a closed sum type standing in for the AMQP primitive types
// the tracking protocol's message body can contain: binary (address
// key), boolean (reachability flag), and list (the body envelope).
type Value struct {
	kind   Kind
	binary []byte
	bool_  bool
	list   []Value
}

// Binary constructs a binary-typed Value.
func Binary(b []byte) Value { return Value{kind: KindBinary, binary: b} }

// Bool constructs a boolean-typed Value.
func Bool(b bool) Value { return Value{kind: KindBool, bool_: b} }

// List constructs a list-typed Value from its elements.
func List(elems ...Value) Value { return Value{kind: KindList, list: elems} }

// Kind reports the concrete type held.
func (v Value) Kind() Kind { return v.kind }

// IsScalar reports whether v holds a scalar (non-list) value, matching
// the qd_parse_is_scalar check in the reference implementation.
func (v Value) IsScalar() bool { return v.kind != KindList }

// AsBinary returns the binary payload, or an error if v is not binary.
func (v Value) AsBinary() ([]byte, error) {
	if v.kind != KindBinary {
		return nil, errors.Errorf("proto: value is not binary (kind=%d)", v.kind)
	}
	return v.binary, nil
}

// AsBool returns the boolean payload, or an error if v is not boolean.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, errors.Errorf("proto: value is not bool (kind=%d)", v.kind)
	}
	return v.bool_, nil
}

// AsList returns the list elements, or an error if v is not a list.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, errors.Errorf("proto: value is not a list (kind=%d)", v.kind)
	}
	return v.list, nil
}
