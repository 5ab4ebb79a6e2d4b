package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/chanket/smtp/email"
	"github.com/chanket/smtp/userconfig"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Log with filename and line number. This writes to stderr, so it should
	// be thread safe.
	// https://github.com/rs/zerolog/blob/7ccd4c940bf8a02fcc5f10e5475f9d3daff04d57/log/log.go#L13
	log.Logger = log.With().Caller().Logger()

	configPath := flag.String(
		"config",
		"./config.yaml",
		"path to a YAML file containing your configuration",
	)
	level := flag.String(
		"level",
		"info",
		`log level: "info", "debug", or "warn"`,
	)
	flag.Parse()

	switch *level {
	case "debug":
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	case "warn":
		log.Logger = log.Logger.Level(zerolog.WarnLevel)
	default:
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	f, err := os.Open(*configPath)
	if err != nil {
		log.Error().
			Str("config-path", *configPath).
			Err(err).
			Msg("We can't open the application config file")
		os.Exit(1)
	}

	config, err := userconfig.Parse(f)
	f.Close()
	if err != nil {
		log.Error().
			Err(err).
			Msg("Problem parsing your config")
		os.Exit(1)
	}

	if err := config.CheckAndSetDefaults(); err != nil {
		log.Error().
			Err(err).
			Msg("Problem validating your config")
		os.Exit(1)
	}

	client, err := email.NewClient(config.Server, config.Encrypted)
	if err != nil {
		log.Error().
			Str("server", config.Server).
			Err(err).
			Msg("The server address in your config doesn't parse")
		os.Exit(1)
	}

	msg := &email.Message{
		FromName:   config.FromName,
		From:       config.From,
		Recipients: config.Recipients,
		Subject:    config.Subject,
		Body:       config.Body,
		HTML:       config.HTML,
		Progress: func(name string, sent int64) {
			log.Debug().
				Str("attachment", name).
				Int64("bytes", sent).
				Msg("attachment upload progress")
		},
	}

	for _, p := range config.Attachments {
		af, err := os.Open(p)
		if err != nil {
			log.Error().
				Str("attachment-path", p).
				Err(err).
				Msg("We can't open an attachment file")
			os.Exit(1)
		}
		defer af.Close()
		msg.Attachments = append(msg.Attachments, email.Attachment{
			Name:    filepath.Base(p),
			Content: af,
		})
	}

	log.Info().
		Str("server", config.Server).
		Int("recipients", len(config.Recipients)).
		Msg("sending the message")

	if err := client.Send(msg, config.Password); err != nil {
		log.Error().
			Err(err).
			Msg("The send failed")
		os.Exit(1)
	}

	log.Info().
		Strs("recipients", config.Recipients).
		Msg("the server accepted the message")
}
