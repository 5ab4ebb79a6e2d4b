package email

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// attachmentChunkSize is the read-buffer size used to stream attachment
// content. A multiple of 3 keeps each chunk's base64 encoding free of
// interior padding, so consecutive chunks concatenate into one valid
// encoding of the whole stream.
const attachmentChunkSize = 3 * 1024

// Message is one email: its headers, a plain-text or HTML body, and any
// number of attachments. From doubles as the AUTH LOGIN username during
// Client.Send.
type Message struct {
	FromName   string
	From       string
	Recipients []string
	Subject    string
	Body       string

	// HTML selects text/html for the body part instead of text/plain.
	HTML bool

	Attachments []Attachment

	// Progress, when non-nil, is called after each attachment chunk is
	// written, with the attachment name and the cumulative number of
	// content bytes sent for it so far.
	Progress func(name string, sent int64)
}

// encodeWord wraps s in the RFC 2047 encoded-word form. Applied
// unconditionally: even pure-ASCII names and subjects get encoded, so the
// header shape never depends on the input alphabet.
func encodeWord(s string) string {
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

// joinRecipients renders the To header value: "<addr1>, <addr2>, ...".
func joinRecipients(rcpts []string) string {
	var b strings.Builder
	for i, r := range rcpts {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "<%v>", r)
	}
	return b.String()
}

// WriteTo implements io.WriterTo, serializing the message as a
// multipart/mixed MIME document with a boundary token that is unique to
// this call. The body and every attachment are base64-encoded; attachment
// content is streamed chunk by chunk rather than held in memory. The final
// boundary is written in its terminating "--token--" form so MIME readers
// see the end of the multipart.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	mw := &mimeWriter{w: w}
	boundary := "=_" + uuid.New().String()

	mw.linef("From: %v <%v>", encodeWord(m.FromName), m.From)
	mw.linef("To: %v", joinRecipients(m.Recipients))
	mw.linef("Subject: %v", encodeWord(m.Subject))
	mw.linef("Mime-Version: 1.0")
	mw.linef("Content-Type: multipart/mixed; boundary=\"%v\"", boundary)
	mw.linef("Content-Transfer-Encoding: 7bit")
	mw.linef("")
	mw.linef("This is a multipart message in MIME format.")

	mw.linef("--%v", boundary)
	m.writeBody(mw)
	for i := range m.Attachments {
		mw.linef("--%v", boundary)
		m.writeAttachment(mw, &m.Attachments[i])
	}
	mw.linef("--%v--", boundary)

	return mw.n, mw.err
}

func (m *Message) writeBody(mw *mimeWriter) {
	ctype := "text/plain"
	if m.HTML {
		ctype = "text/html"
	}
	mw.linef("Content-Type: %v; charset=\"utf-8\"", ctype)
	mw.linef("Content-Transfer-Encoding: base64")
	mw.linef("")
	mw.linef("%v", base64.StdEncoding.EncodeToString([]byte(m.Body)))
}

// writeAttachment emits one attachment part, reading the content from its
// start in 3-aligned chunks and encoding each chunk as it goes. Encoded
// chunks are written back to back with no line breaks between them, so the
// output line can exceed typical length conventions, but an arbitrarily
// large attachment never needs its encoded payload buffered whole.
func (m *Message) writeAttachment(mw *mimeWriter, a *Attachment) {
	name := encodeWord(a.Name)
	mw.linef("Content-Type: application/octet-stream; name=\"%v\"", name)
	mw.linef("Content-Transfer-Encoding: base64")
	mw.linef("Content-Disposition: attachment; filename=\"%v\"", name)
	mw.linef("")
	if mw.err != nil {
		return
	}

	if _, err := a.Content.Seek(0, io.SeekStart); err != nil {
		mw.err = err
		return
	}

	var sent int64
	buf := make([]byte, attachmentChunkSize)
	for {
		n, err := io.ReadFull(a.Content, buf)
		if n > 0 {
			mw.raw(base64.StdEncoding.EncodeToString(buf[:n]))
			if mw.err != nil {
				return
			}
			sent += int64(n)
			if m.Progress != nil {
				m.Progress(a.Name, sent)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			mw.err = err
			return
		}
	}

	// Terminate the encoded line before the next boundary.
	mw.linef("")
}

// mimeWriter accumulates the byte count and the first write error, so the
// builder can emit the document without checking every write.
type mimeWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (mw *mimeWriter) raw(s string) {
	if mw.err != nil {
		return
	}
	n, err := io.WriteString(mw.w, s)
	mw.n += int64(n)
	mw.err = err
}

func (mw *mimeWriter) linef(format string, args ...interface{}) {
	if mw.err != nil {
		return
	}
	n, err := fmt.Fprintf(mw.w, format+"\r\n", args...)
	mw.n += int64(n)
	mw.err = err
}
