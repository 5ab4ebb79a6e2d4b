package email

import (
	"regexp"
	"strconv"
)

// Standard SMTP ports, applied when the user omits one: plaintext
// submission on 25, implicit TLS on 465.
const (
	defaultPortPlain = 25
	defaultPortTLS   = 465
)

// Matches "host" or "host:port". Not handling the compilation error since
// the pattern is constant.
var addressPattern = regexp.MustCompile(`^([^:]+)(?::(\d+))?$`)

// endpoint is a resolved SMTP server location. Immutable once returned by
// resolveEndpoint.
type endpoint struct {
	host      string
	port      int
	encrypted bool
}

// resolveEndpoint parses an address of the form "host" or "host:port" into
// an endpoint. Pure parsing: no name resolution or I/O happens here. When
// the port is absent it is derived from the encryption flag; when present
// it must be an integer within the valid TCP range.
func resolveEndpoint(address string, encrypted bool) (endpoint, error) {
	m := addressPattern.FindStringSubmatch(address)
	if m == nil {
		return endpoint{}, &AddressError{
			Address: address,
			Reason:  "want \"host\" or \"host:port\"",
		}
	}

	ep := endpoint{host: m[1], encrypted: encrypted}

	if m[2] == "" {
		if encrypted {
			ep.port = defaultPortTLS
		} else {
			ep.port = defaultPortPlain
		}
		return ep, nil
	}

	p, err := strconv.Atoi(m[2])
	if err != nil || p < 1 || p > 65535 {
		return endpoint{}, &AddressError{
			Address: address,
			Reason:  "port must be an integer between 1 and 65535",
		}
	}
	ep.port = p

	return ep, nil
}
