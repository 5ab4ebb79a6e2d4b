package userconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAndValidate(t *testing.T) {
	testCases := []struct {
		description   string
		conf          string
		shouldBeError bool
	}{
		{
			description: "valid case",
			conf: `---
server: smtp.example.com:465
encrypted: true
fromName: My Newsletter
from: mynewsletter@example.com
password: 123456-A_BCDE
recipients:
    - one@example.com
    - two@example.com
subject: The latest
body: Hello there
html: false
`,
			shouldBeError: false,
		},
		{
			description: "no port is fine since the encryption flag implies one",
			conf: `---
server: smtp.example.com
from: mynewsletter@example.com
password: 123456-A_BCDE
recipients:
    - one@example.com
`,
			shouldBeError: false,
		},
		{
			description: "no server address",
			conf: `---
from: mynewsletter@example.com
password: 123456-A_BCDE
recipients:
    - one@example.com
`,
			shouldBeError: true,
		},
		{
			description: "no password",
			conf: `---
server: smtp.example.com
from: mynewsletter@example.com
recipients:
    - one@example.com
`,
			shouldBeError: true,
		},
		{
			description: "no from address",
			conf: `---
server: smtp.example.com
password: 123456-A_BCDE
recipients:
    - one@example.com
`,
			shouldBeError: true,
		},
		{
			description: "no recipients",
			conf: `---
server: smtp.example.com
from: mynewsletter@example.com
password: 123456-A_BCDE
`,
			shouldBeError: true,
		},
		{
			description: "body and bodyFile together",
			conf: `---
server: smtp.example.com
from: mynewsletter@example.com
password: 123456-A_BCDE
recipients:
    - one@example.com
body: inline
bodyFile: /tmp/nope.html
`,
			shouldBeError: true,
		},
		{
			description:   "not a map",
			conf:          `[]`,
			shouldBeError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			c, err := Parse(bytes.NewBufferString(tc.conf))
			if err == nil {
				err = c.CheckAndSetDefaults()
			}
			if (err != nil) != tc.shouldBeError {
				t.Errorf(
					"unexpected error status--wanted %v but got %v with error %v",
					tc.shouldBeError,
					err != nil,
					err,
				)
			}
		})
	}
}

func TestCheckAndSetDefaultsReadsBodyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "body.html")
	if err := os.WriteFile(p, []byte("<p>from a file</p>"), 0600); err != nil {
		t.Fatal(err)
	}

	c := Config{
		Server:     "smtp.example.com",
		From:       "mynewsletter@example.com",
		Password:   "123456-A_BCDE",
		Recipients: []string{"one@example.com"},
		BodyFile:   p,
	}
	if err := c.CheckAndSetDefaults(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if c.Body != "<p>from a file</p>" {
		t.Errorf("the body file content never made it into the config: %q", c.Body)
	}
}
