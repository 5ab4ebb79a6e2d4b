package email

import "fmt"

// AddressError indicates a server address string that couldn't be parsed
// into a host and port.
type AddressError struct {
	Address string
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("bad server address %q: %v", e.Address, e.Reason)
}

// ProtocolError indicates a deviation from the expected SMTP exchange: an
// unexpected reply code, a malformed AUTH LOGIN challenge, or a failed TLS
// handshake. Code is the reply code that was expected, or zero when no
// single code applies.
//
// Failures below the protocol layer--DNS resolution, the TCP dial, stream
// I/O--are deliberately not given a type here and reach the caller as the
// errors the standard library produced.
type ProtocolError struct {
	Code int
	Msg  string
}

func (e *ProtocolError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%v (expected reply code %d)", e.Msg, e.Code)
	}
	return e.Msg
}

// AuthError indicates that the server rejected the credentials during the
// AUTH LOGIN exchange. Recovering means the caller retrying with different
// credentials--the client never retries on its own.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return e.Msg
}
