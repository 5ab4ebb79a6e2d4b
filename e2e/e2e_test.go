package e2e

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"os"
	"testing"
	"time"

	"github.com/chanket/smtp/email"
	"github.com/chanket/smtp/smtptest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Send one message with an attachment over implicit TLS and make sure the
// server stored exactly what the client framed.
func TestSendOverImplicitTLS(t *testing.T) {
	keyPath, certPath, err := smtptest.GenerateTLSFiles(t)
	require.NoError(t, err)

	srv := smtptest.NewInProcessServer(keyPath, certPath)
	go func(s *smtptest.InProcessServer) {
		// Serve returns a non-nil error when Close tears the listener
		// down, so there's nothing useful to check here.
		_ = s.Start()
	}(srv)
	defer srv.Close()

	// The server cert is a root cert, so the client can trust it directly.
	pem, err := os.ReadFile(certPath)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(pem), "can't add the test cert to a pool")

	client, err := email.NewClient(srv.Address(), true)
	require.NoError(t, err)
	client.TLSConfig = &tls.Config{RootCAs: pool}
	client.Timeout = 10 * time.Second

	attachment := bytes.Repeat([]byte{0xa5, 0x5a, 0x00}, 2048)
	body := "<html><body>Hello this is my email body.</body></html>"

	start := time.Now().UnixNano()
	msg := &email.Message{
		FromName:   "My Newsletter",
		From:       "me@example.com",
		Recipients: []string{"you@example.com", "them@example.com"},
		Subject:    "The latest",
		Body:       body,
		HTML:       true,
		Attachments: []email.Attachment{
			{Name: "links.bin", Content: bytes.NewReader(attachment)},
		},
	}
	require.NoError(t, client.Send(msg, "mypassword"))

	got, err := srv.RetrieveEmails(start)
	require.NoError(t, err)
	require.Len(t, got, 1, "expected to have sent exactly one email")

	stored := got[0]
	assert.Contains(t, stored, "Content-Type: multipart/mixed;")
	assert.Contains(t, stored, "Mime-Version: 1.0")
	assert.Contains(t, stored, "To: <you@example.com>, <them@example.com>")
	assert.Contains(
		t,
		stored,
		base64.StdEncoding.EncodeToString([]byte(body)),
		"the text/html email body never reached the server",
	)
	assert.Contains(
		t,
		stored,
		base64.StdEncoding.EncodeToString(attachment),
		"the attachment content never reached the server",
	)
}

// Bad credentials must surface as an AuthError even over the full TLS
// stack, since the server refuses empty usernames or passwords.
func TestAuthFailureOverImplicitTLS(t *testing.T) {
	keyPath, certPath, err := smtptest.GenerateTLSFiles(t)
	require.NoError(t, err)

	srv := smtptest.NewInProcessServer(keyPath, certPath)
	go func(s *smtptest.InProcessServer) {
		_ = s.Start()
	}(srv)
	defer srv.Close()

	pem, err := os.ReadFile(certPath)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(pem))

	client, err := email.NewClient(srv.Address(), true)
	require.NoError(t, err)
	client.TLSConfig = &tls.Config{RootCAs: pool}
	client.Timeout = 10 * time.Second

	msg := &email.Message{
		FromName:   "My Newsletter",
		From:       "me@example.com",
		Recipients: []string{"you@example.com"},
		Subject:    "The latest",
		Body:       "hello",
	}

	// An empty password is the one credential shape the test backend
	// rejects.
	err = client.Send(msg, "")
	var ae *email.AuthError
	require.ErrorAs(t, err, &ae)
}
