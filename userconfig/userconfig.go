package userconfig

// userconfig parses and validates the YAML configuration for the one-shot
// sender CLI. It deals only in user-provided values; turning them into a
// connected client is the email package's job.

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config represents all options the sender CLI can use. Not meant to be
// used for sending without validation via CheckAndSetDefaults.
type Config struct {
	// Server is the SMTP server to send through, as "host" or
	// "host:port". The port defaults from the Encrypted flag.
	Server    string `yaml:"server"`
	Encrypted bool   `yaml:"encrypted"`

	FromName string `yaml:"fromName"`
	// From is the sender address, which is also the AUTH LOGIN username.
	From     string `yaml:"from"`
	Password string `yaml:"password"`

	Recipients []string `yaml:"recipients"`
	Subject    string   `yaml:"subject"`

	// Body is the message content. BodyFile names a file to read it from
	// instead; the two are mutually exclusive.
	Body     string `yaml:"body"`
	BodyFile string `yaml:"bodyFile"`
	HTML     bool   `yaml:"html"`

	// Attachments lists paths of files to attach.
	Attachments []string `yaml:"attachments"`
}

// Parse reads a user-provided YAML configuration, returning any parsing
// errors.
func Parse(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("can't parse the user config: %v", err)
	}
	return c, nil
}

// CheckAndSetDefaults validates c and resolves the body content, reading
// BodyFile if one was given. It returns an error due to an invalid
// configuration.
func (c *Config) CheckAndSetDefaults() error {
	if c.Server == "" {
		return errors.New(
			"user-provided config does not include a server address",
		)
	}
	if c.From == "" || c.Password == "" {
		return errors.New("must supply a \"from\" address and a password")
	}
	if len(c.Recipients) == 0 {
		return errors.New("must supply at least one recipient")
	}
	if c.Body != "" && c.BodyFile != "" {
		return errors.New("body and bodyFile are mutually exclusive")
	}
	if c.BodyFile != "" {
		b, err := os.ReadFile(c.BodyFile)
		if err != nil {
			return fmt.Errorf("can't read the body file: %v", err)
		}
		c.Body = string(b)
	}
	return nil
}
