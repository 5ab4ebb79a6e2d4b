package email

import (
	"crypto/tls"
	"net"
	"strconv"
	"time"
)

// connect opens the transport stream to the client's endpoint. Plaintext
// connections are returned as dialed. Encrypted connections are wrapped in
// a TLS client session with the handshake run eagerly, so certificate and
// negotiation failures surface here rather than on the first protocol
// read.
//
// Dial failures (DNS, refused, timed out) reach the caller unwrapped. TLS
// handshake failures are collapsed into a single ProtocolError: the
// two-tier error taxonomy has no slot for handshake detail.
func (c *Client) connect() (net.Conn, error) {
	addr := net.JoinHostPort(c.ep.host, strconv.Itoa(c.ep.port))

	d := net.Dialer{Timeout: c.Timeout}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	if !c.ep.encrypted {
		return conn, nil
	}

	var cfg *tls.Config
	if c.TLSConfig != nil {
		cfg = c.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	// The resolved host is the verification name unless the caller set
	// their own.
	if cfg.ServerName == "" {
		cfg.ServerName = c.ep.host
	}

	tlsConn := tls.Client(conn, cfg)
	if c.Timeout != 0 {
		conn.SetDeadline(time.Now().Add(c.Timeout))
	}
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, &ProtocolError{Msg: "cannot complete TLS authentication"}
	}
	if c.Timeout != 0 {
		conn.SetDeadline(time.Time{})
	}
	return tlsConn, nil
}
