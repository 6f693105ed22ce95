package proto

import "github.com/pkg/errors"

// ErrMalformedBody is returned by DecodeTrackingBody when the message
// body fails structural validation. It corresponds to the REJECTED
// disposition path in on_transfer of the reference implementation.
var ErrMalformedBody = errors.New("proto: malformed tracking message body")

// DecodeTrackingBody validates and decodes a tracking-endpoint message
// body. The body must be a list of exactly two scalar elements: an
// address (binary, including its class-prefix byte) and a boolean
// reachability flag.
//
// Mirrors the validation chain of on_transfer in
// addr_proxy.c: list check, length-2 check, then scalar check on both
// elements. Any failure returns ErrMalformedBody (the caller rejects
// the delivery); success never implies the address is known — that
// lookup is the caller's job (see controller/tracking.go).
func DecodeTrackingBody(body Value) (addr []byte, hasUpstream bool, err error) {
	elems, err := body.AsList()
	if err != nil {
		return nil, false, errors.Wrap(ErrMalformedBody, err.Error())
	}
	if len(elems) != 2 {
		return nil, false, errors.Wrapf(ErrMalformedBody, "expected list of 2 elements, got %d", len(elems))
	}

	addrField, destField := elems[0], elems[1]
	if !addrField.IsScalar() || !destField.IsScalar() {
		return nil, false, errors.Wrap(ErrMalformedBody, "list elements must be scalar")
	}

	addr, err = addrField.AsBinary()
	if err != nil {
		return nil, false, errors.Wrap(ErrMalformedBody, "address field must be binary")
	}
	hasUpstream, err = destField.AsBool()
	if err != nil {
		return nil, false, errors.Wrap(ErrMalformedBody, "reachability field must be boolean")
	}
	return addr, hasUpstream, nil
}

// EncodeTrackingBody builds the message body for a tracking update,
// the inverse of DecodeTrackingBody. Used by test harnesses playing
// the role of the interior router.
func EncodeTrackingBody(addr []byte, hasUpstream bool) Value {
	return List(Binary(addr), Bool(hasUpstream))
}
