package email

import (
	"bufio"
	"net"
	"strings"
	"time"
)

// lineConn owns one buffered reader/writer pair over the session's socket
// and speaks CRLF-terminated lines. Every write is flushed before
// returning, so the server is never left waiting on a buffered command.
type lineConn struct {
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	timeout time.Duration
}

func newLineConn(conn net.Conn, timeout time.Duration) *lineConn {
	return &lineConn{
		conn:    conn,
		r:       bufio.NewReader(conn),
		w:       bufio.NewWriter(conn),
		timeout: timeout,
	}
}

// deadline arms the per-operation deadline. A zero timeout means reads and
// writes block until the server responds, however long that takes.
func (lc *lineConn) deadline() {
	if lc.timeout == 0 {
		return
	}
	lc.conn.SetDeadline(time.Now().Add(lc.timeout))
}

// readLine reads one reply line, returned without its line ending.
func (lc *lineConn) readLine() (string, error) {
	lc.deadline()
	line, err := lc.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// writeLine writes line followed by CRLF and flushes.
func (lc *lineConn) writeLine(line string) error {
	lc.deadline()
	if _, err := lc.w.WriteString(line); err != nil {
		return err
	}
	if _, err := lc.w.WriteString("\r\n"); err != nil {
		return err
	}
	return lc.w.Flush()
}

// Write implements io.Writer so the message builder can stream the DATA
// payload through the same buffered channel. Callers must flush when the
// payload is complete.
func (lc *lineConn) Write(p []byte) (int, error) {
	lc.deadline()
	return lc.w.Write(p)
}

func (lc *lineConn) flush() error {
	lc.deadline()
	return lc.w.Flush()
}
