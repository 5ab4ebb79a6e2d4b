package email

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// credentials holds the AUTH LOGIN identity for the duration of one send.
type credentials struct {
	username string
	password string
}

// session drives the line-oriented SMTP exchange over an open transport
// stream. The phases are strictly sequential--handshake, then
// authentication, then transfer--and each one validates the expected
// reply-code prefix, failing fast on the first mismatch. The caller owns
// the stream and closes it whether or not a phase fails.
type session struct {
	conn  *lineConn
	host  string
	creds credentials
}

// expect reads one reply line and validates its 3-digit code prefix,
// returning the full line without its ending.
func (s *session) expect(code int, msg string) (string, error) {
	line, err := s.conn.readLine()
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(line, fmt.Sprintf("%d ", code)) {
		return "", &ProtocolError{Code: code, Msg: msg}
	}
	return line, nil
}

// handshake consumes the server greeting and performs EHLO. Extension
// lines in the EHLO reply ("250-...") are consumed and discarded: the
// client never branches on advertised capabilities.
func (s *session) handshake() error {
	if _, err := s.expect(220, "cannot complete SMTP handshake"); err != nil {
		return err
	}
	if err := s.conn.writeLine("EHLO " + s.host); err != nil {
		return err
	}
	for {
		line, err := s.conn.readLine()
		if err != nil {
			return err
		}
		if strings.HasPrefix(line, "250-") {
			continue
		}
		if !strings.HasPrefix(line, "250 ") {
			return &ProtocolError{Code: 250, Msg: "cannot complete SMTP handshake"}
		}
		return nil
	}
}

// authenticate performs the AUTH LOGIN exchange: the server issues two
// base64 challenges ("Username:", then "Password:") and the client answers
// each with the base64 encoding of the raw credential bytes.
func (s *session) authenticate() error {
	if err := s.conn.writeLine("AUTH LOGIN"); err != nil {
		return err
	}
	if err := s.answerChallenge("username:", s.creds.username); err != nil {
		return err
	}
	if err := s.answerChallenge("password:", s.creds.password); err != nil {
		return err
	}

	line, err := s.conn.readLine()
	if err != nil {
		return err
	}
	// A permanent-failure class reply means the server refused the login
	// outright; anything else that isn't 235 means the credentials didn't
	// check out.
	if strings.HasPrefix(line, "5") {
		return &AuthError{Msg: "cannot log in"}
	}
	if !strings.HasPrefix(line, "235 ") {
		return &AuthError{Msg: "incorrect login credentials"}
	}
	return nil
}

// answerChallenge validates one 334 challenge against want--compared
// case-insensitively after base64 decoding--and replies with the encoded
// answer.
func (s *session) answerChallenge(want, answer string) error {
	line, err := s.conn.readLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(line, "334 ") {
		return &ProtocolError{Code: 334, Msg: "cannot complete the AUTH LOGIN exchange"}
	}
	dec, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, "334 "))
	if err != nil || !strings.EqualFold(string(dec), want) {
		return &ProtocolError{
			Code: 334,
			Msg:  fmt.Sprintf("unexpected AUTH LOGIN challenge, want %q", want),
		}
	}
	return s.conn.writeLine(base64.StdEncoding.EncodeToString([]byte(answer)))
}

// transfer performs the MAIL FROM / RCPT TO / DATA phase, streaming the
// MIME document as the message payload. Recipients are announced in order,
// one RCPT TO per entry, and the first rejection aborts the whole send:
// there is no partial-success accounting.
func (s *session) transfer(msg *Message) error {
	if err := s.conn.writeLine(fmt.Sprintf("MAIL FROM: <%v>", msg.From)); err != nil {
		return err
	}
	if _, err := s.expect(250, "sender rejected"); err != nil {
		return err
	}

	for _, rcpt := range msg.Recipients {
		if err := s.conn.writeLine(fmt.Sprintf("RCPT TO: <%v>", rcpt)); err != nil {
			return err
		}
		if _, err := s.expect(250, fmt.Sprintf("recipient %v rejected", rcpt)); err != nil {
			return err
		}
	}

	if err := s.conn.writeLine("DATA"); err != nil {
		return err
	}
	if _, err := s.expect(354, "cannot begin message transfer"); err != nil {
		return err
	}

	if _, err := msg.WriteTo(s.conn); err != nil {
		return err
	}
	if _, err := io.WriteString(s.conn, "\r\n.\r\n"); err != nil {
		return err
	}
	if err := s.conn.flush(); err != nil {
		return err
	}

	if _, err := s.expect(250, "send failed"); err != nil {
		return err
	}
	return nil
}
