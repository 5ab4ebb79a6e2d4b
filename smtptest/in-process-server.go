package smtptest

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// messageData includes the body content and created timestamp for an email
// message, allowing us to inspect message bodies before/after a timestamp
// for correctness.
type messageData struct {
	created time.Time
	body    string
}

// Backend implements smtp.Backend. It's a thin authentication wrapper for
// an InMemoryEmailStore.
type Backend struct {
	*InMemoryEmailStore
}

// Login implements smtp.Backend. Any username/password is fine, since we
// don't want to couple this with specific test configurations.
func (be *Backend) Login(_ *smtp.ConnectionState, username string, password string) (smtp.Session, error) {
	if username != "" && password != "" {
		return be.InMemoryEmailStore, nil
	}
	return nil, errors.New("no username or password provided")
}

// AnonymousLogin implements smtp.Backend. Not supported since we want to
// enforce AUTH.
func (be *Backend) AnonymousLogin(_ *smtp.ConnectionState) (smtp.Session, error) {
	return nil, smtp.ErrAuthUnsupported
}

// InMemoryEmailStore retains email bodies in memory for comparison against
// a test's expected output. Implements smtp.Session. Designed to be
// goroutine safe since we don't know how many goroutines will be hitting
// the server at once.
type InMemoryEmailStore struct {
	mu       *sync.Mutex
	messages []messageData
}

// Reset implements smtp.Session. No-op here.
func (es *InMemoryEmailStore) Reset() {}

// Logout implements smtp.Session. No-op here.
func (es *InMemoryEmailStore) Logout() error { return nil }

// Mail implements smtp.Session. No-op here.
func (es *InMemoryEmailStore) Mail(_ string, _ smtp.MailOptions) error { return nil }

// Rcpt implements smtp.Session. No-op here.
func (es *InMemoryEmailStore) Rcpt(to string) error { return nil }

// Data implements smtp.Session. Stores the email data in memory for
// retrieval at the end of the test.
func (es *InMemoryEmailStore) Data(r io.Reader) error {
	// doubtful we'll get an email this big, but we need a limit
	var maxEmailSize int64 = 100 * units.MiB
	buf, err := io.ReadAll(io.LimitReader(r, maxEmailSize))
	if err != nil {
		return err
	}

	str := &strings.Builder{}
	if _, err := str.Write(buf); err != nil {
		return err
	}
	es.saveEmail(str.String())
	return nil
}

// saveEmail stores the email body in memory along with a timestamp created
// just prior to saving.
func (es *InMemoryEmailStore) saveEmail(bod string) {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.messages = append(es.messages, messageData{
		created: time.Now(),
		body:    bod,
	})
}

// RetrieveEmails returns a slice of all message bodies (as strings) sent
// after epoch nanoseconds t. Satisfies smtptest.Server but isn't expected
// to return an error.
func (es *InMemoryEmailStore) RetrieveEmails(t int64) ([]string, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	r := make([]string, 0, len(es.messages))
	for _, m := range es.messages {
		if m.created.UnixNano() >= t {
			r = append(r, m.body)
		}
	}
	return r, nil
}

// InProcessServer is an SMTP server that runs in the same process as the
// test suite behind an implicit-TLS listener, letting us inspect sent
// emails. You must initialize this via NewInProcessServer.
type InProcessServer struct {
	*smtp.Server
	// We're also using this as an smtp.Session, i.e., the Backend of the
	// *smtp.Server. This is kind of gross, but allows us to access the
	// *InMemoryEmailStore. Otherwise, we're stuck with *smtp.Server.Backend,
	// which just leaves us with the Backend interface methods.
	*InMemoryEmailStore

	ln net.Listener
}

var _ Server = &InProcessServer{}

// NewInProcessServer creates an InProcessServer, including configuring its
// SMTP server to store incoming messages in memory. Must provide the paths
// to the key and cert used for TLS. The cert must be a root cert.
//
// The listener is created here--and wrapped with tls.NewListener, since
// the client under test negotiates TLS immediately on connect rather than
// upgrading via STARTTLS--so that Address is usable before Start.
func NewInProcessServer(keypath string, certpath string) *InProcessServer {
	is := &InMemoryEmailStore{
		mu:       &sync.Mutex{},
		messages: []messageData{},
	}
	be := &Backend{is}

	srv := smtp.NewServer(be)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = false // need AUTH here
	srv.AuthDisabled = false      // need AUTH here
	// Strict is undocumented, but it looks like it enforces <address> syntax
	// in messages:
	// https://github.com/emersion/go-smtp/blob/f92bf7f1a25777bcdaa28a142b1cd1a54b74c8f4/conn.go#L321-L325
	srv.Strict = true
	// The client under test streams attachment base64 as one unbroken line
	// (the wire format inserts no line breaks), so the default 2000-byte
	// MaxLineLength would reject any non-trivial attachment with
	// ErrTooLongLine. Zero disables the limit.
	srv.MaxLineLength = 0

	// The client under test authenticates with AUTH LOGIN, which go-smtp
	// doesn't register by default (it only sets up PLAIN). Wire the LOGIN
	// mechanism through the same backend.
	srv.EnableAuth(sasl.Login, func(conn *smtp.Conn) sasl.Server {
		return sasl.NewLoginServer(func(username, password string) error {
			state := conn.State()
			session, err := be.Login(&state, username, password)
			if err != nil {
				return err
			}
			conn.SetSession(session)
			return nil
		})
	})

	cert, err := tls.LoadX509KeyPair(certpath, keypath)

	// No way to carry on without a cert, so we panic. We're in a test
	// suite, so this should be fine.
	if err != nil {
		panic(err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}

	return &InProcessServer{
		srv,
		is,
		tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
		}),
	}
}

// Start starts the test server on its TLS listener. Blocking.
func (is *InProcessServer) Start() error {
	return is.Server.Serve(is.ln)
}

// Close shuts down the test server daemon. You must initialize a new
// InProcessServer instead of restarting this one.
func (is *InProcessServer) Close() {
	is.Server.Close()
}

// Address returns the host:port of the test SMTP server.
func (is *InProcessServer) Address() string {
	return is.ln.Addr().String()
}
