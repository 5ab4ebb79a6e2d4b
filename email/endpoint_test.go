package email

import (
	"errors"
	"testing"
)

func TestResolveEndpoint(t *testing.T) {
	testCases := []struct {
		description   string
		address       string
		encrypted     bool
		wantHost      string
		wantPort      int
		shouldBeError bool
	}{
		{
			description: "plaintext default port",
			address:     "smtp.example.com",
			encrypted:   false,
			wantHost:    "smtp.example.com",
			wantPort:    25,
		},
		{
			description: "encrypted default port",
			address:     "smtp.example.com",
			encrypted:   true,
			wantHost:    "smtp.example.com",
			wantPort:    465,
		},
		{
			description: "explicit port with encryption",
			address:     "smtp.example.com:587",
			encrypted:   true,
			wantHost:    "smtp.example.com",
			wantPort:    587,
		},
		{
			description: "explicit port without encryption",
			address:     "smtp.example.com:587",
			encrypted:   false,
			wantHost:    "smtp.example.com",
			wantPort:    587,
		},
		{
			description:   "double colon",
			address:       "bad::address",
			shouldBeError: true,
		},
		{
			description:   "port out of range",
			address:       "host:999999",
			shouldBeError: true,
		},
		{
			description:   "port zero",
			address:       "host:0",
			shouldBeError: true,
		},
		{
			description:   "non-numeric port",
			address:       "host:banana",
			shouldBeError: true,
		},
		{
			description:   "trailing colon",
			address:       "host:",
			shouldBeError: true,
		},
		{
			description:   "empty address",
			address:       "",
			shouldBeError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			ep, err := resolveEndpoint(tc.address, tc.encrypted)
			if (err != nil) != tc.shouldBeError {
				t.Fatalf(
					"unexpected error status--wanted %v but got %v with error %v",
					tc.shouldBeError,
					err != nil,
					err,
				)
			}
			if tc.shouldBeError {
				var ae *AddressError
				if !errors.As(err, &ae) {
					t.Errorf("expected an *AddressError but got %T: %v", err, err)
				}
				return
			}
			if ep.host != tc.wantHost {
				t.Errorf("wanted host %v but got %v", tc.wantHost, ep.host)
			}
			if ep.port != tc.wantPort {
				t.Errorf("wanted port %v but got %v", tc.wantPort, ep.port)
			}
			if ep.encrypted != tc.encrypted {
				t.Errorf("the encryption flag was not preserved")
			}
		})
	}
}

func TestNewClientResolvesAddress(t *testing.T) {
	c, err := NewClient("mail.example.com:2525", true)
	if err != nil {
		t.Fatalf("unexpected error creating the client: %v", err)
	}
	if c.Host() != "mail.example.com" {
		t.Errorf("wanted host mail.example.com but got %v", c.Host())
	}
	if c.Port() != 2525 {
		t.Errorf("wanted port 2525 but got %v", c.Port())
	}

	if _, err := NewClient("mail.example.com:not-a-port", false); err == nil {
		t.Error("expected an error for a malformed address but got none")
	}
}
