package smtptest

import (
	"bufio"
	"crypto/tls"
	"net"
	"strings"
	"sync"
	"testing"
)

// Step is one beat of a scripted SMTP conversation: the prefix of the
// command the server expects to read next (empty for server-first lines,
// such as the greeting), whether a dot-terminated DATA payload follows the
// command, and the reply lines the server sends back.
type Step struct {
	Expect string
	Data   bool
	Reply  []string
}

// ScriptServer plays a fixed SMTP conversation against exactly one client
// connection, recording everything the client sent. It makes no protocol
// decisions of its own--the test owns the script--so a test can assert the
// exact command sequence a client produces, including misbehavior a real
// server would never tolerate.
type ScriptServer struct {
	// Addr is the host:port the server listens on.
	Addr string

	ln   net.Listener
	done chan struct{}

	mu           sync.Mutex
	commands     []string
	data         string
	clientClosed bool
}

// RunScript starts a ScriptServer on a loopback port and serves the given
// steps on the first accepted connection. A non-nil tlsConf wraps the
// listener so the client must negotiate TLS on connect. The listener is
// closed via t.Cleanup; call Wait before asserting on recorded state.
func RunScript(t *testing.T, steps []Step, tlsConf *tls.Config) *ScriptServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("can't listen on a loopback port: %v", err)
	}
	if tlsConf != nil {
		ln = tls.NewListener(ln, tlsConf)
	}

	s := &ScriptServer{
		Addr: ln.Addr().String(),
		ln:   ln,
		done: make(chan struct{}),
	}
	t.Cleanup(func() { ln.Close() })

	go s.serve(t, steps)
	return s
}

func (s *ScriptServer) serve(t *testing.T, steps []Step) {
	defer close(s.done)

	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	for _, step := range steps {
		if step.Expect != "" {
			line, err := readCRLFLine(r)
			if err != nil {
				s.noteClosed()
				return
			}
			s.record(line)
			if !strings.HasPrefix(line, step.Expect) {
				t.Errorf("script mismatch: client sent %q, want prefix %q", line, step.Expect)
				return
			}
		}
		if step.Data {
			if err := s.readData(r); err != nil {
				s.noteClosed()
				return
			}
		}
		for _, reply := range step.Reply {
			if _, err := conn.Write([]byte(reply + "\r\n")); err != nil {
				return
			}
		}
	}

	// The script is exhausted; the client is expected to hang up. Note
	// whether it did so tests can assert the connection was released.
	if _, err := readCRLFLine(r); err != nil {
		s.noteClosed()
	}
}

// readData consumes a DATA payload up to and including the lone-dot
// terminator line, storing it for inspection.
func (s *ScriptServer) readData(r *bufio.Reader) error {
	var b strings.Builder
	for {
		line, err := readCRLFLine(r)
		if err != nil {
			return err
		}
		if line == "." {
			break
		}
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = b.String()
	return nil
}

func (s *ScriptServer) record(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, line)
}

func (s *ScriptServer) noteClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientClosed = true
}

// Wait blocks until the scripted conversation is over and the connection
// goroutine has finished recording.
func (s *ScriptServer) Wait() {
	<-s.done
}

// Commands returns the lines the client sent, in order, excluding any DATA
// payload.
func (s *ScriptServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.commands...)
}

// Data returns the DATA payload the client transmitted, without the
// terminator line.
func (s *ScriptServer) Data() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// ClientClosed reports whether the client hung up on the connection.
func (s *ScriptServer) ClientClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientClosed
}

func readCRLFLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
