package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level  string // panic, fatal, error, warn, info, debug, trace
	Format string // text or json
	File   string // Appended to when set, stderr otherwise
}

// Setup configures the standard logrus logger. The returned closer releases the log file.
func Setup(cfg Config) (closer io.Closer, err error) {
	var (
		level = log.WarnLevel
		out   io.Writer
		f     *os.File
	)
	if len(cfg.Level) != 0 {
		if level, err = log.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q, use text or json", cfg.Format)
	}

	out = os.Stderr
	closer = nopCloser{}
	if len(cfg.File) != 0 {
		if f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, f
	}
	log.SetOutput(out)
	return
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
