package email

import (
	"crypto/tls"
	"errors"
	"time"
)

// Client sends email through one SMTP server. Each call to Send owns its
// own connection and exchange; the Client itself holds no connection
// state, so independent sends may run from multiple goroutines at once.
type Client struct {
	// TLSConfig optionally overrides the TLS client configuration used
	// for encrypted connections. Left nil, the server certificate is
	// verified against the system roots under the resolved host name.
	TLSConfig *tls.Config

	// Timeout bounds the dial and each subsequent network read or write.
	// Zero means no deadline: a stalled server blocks the send
	// indefinitely.
	Timeout time.Duration

	ep endpoint
}

// NewClient resolves address ("host" or "host:port") and returns a Client
// that will connect to it. When the port is omitted it defaults to 465 for
// encrypted connections and 25 otherwise. Returns an *AddressError if the
// address doesn't parse.
func NewClient(address string, encrypted bool) (*Client, error) {
	ep, err := resolveEndpoint(address, encrypted)
	if err != nil {
		return nil, err
	}
	return &Client{ep: ep}, nil
}

// Host returns the resolved server host.
func (c *Client) Host() string { return c.ep.host }

// Port returns the resolved server port.
func (c *Client) Port() int { return c.ep.port }

// Send performs one complete SMTP exchange: handshake, AUTH LOGIN with
// msg.From as the username, and message transfer. The connection is closed
// before Send returns, on success and on every failure path alike. A lack
// of an error means the server accepted the message for delivery.
func (c *Client) Send(msg *Message, password string) error {
	if msg == nil {
		return errors.New("no message to send")
	}
	if len(msg.Recipients) == 0 {
		return errors.New("must supply at least one recipient")
	}

	conn, err := c.connect()
	if err != nil {
		return err
	}
	defer conn.Close()

	s := &session{
		conn:  newLineConn(conn, c.Timeout),
		host:  c.ep.host,
		creds: credentials{username: msg.From, password: password},
	}

	if err := s.handshake(); err != nil {
		return err
	}
	if err := s.authenticate(); err != nil {
		return err
	}
	return s.transfer(msg)
}
