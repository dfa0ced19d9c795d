// Package config holds the validated settings of the gorelay commands.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Shared holds the settings common to all serving commands.
type Shared struct {
	Port        int
	Verbose     bool
	Timeout     time.Duration // idle timeout applied to accepted connections
	MaxConns    int           // 0 means unlimited
	LogFile     string
	MetricsAddr string

	Deps *Dependencies
}

// Validate ...
func (c *Shared) Validate() []error {
	var errors []error

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("'--port': %s", err))
	}

	if c.Timeout <= 0 {
		errors = append(errors, fmt.Errorf("'--timeout' must be positive"))
	}

	if c.MaxConns < 0 {
		errors = append(errors, fmt.Errorf("'--max-conns' must not be negative"))
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			errors = append(errors, fmt.Errorf("'--metrics': %s", err))
		}
	}

	return errors
}

// Modes of the listen command.
const (
	ModeEcho   = "echo"
	ModeFrames = "frames"
)

// Listen holds the settings of the echo services.
type Listen struct {
	Mode    string
	Marker  string
	BufSize int
}

// Validate ...
func (c *Listen) Validate() []error {
	var errors []error

	if c.Mode != ModeEcho && c.Mode != ModeFrames {
		errors = append(errors, fmt.Errorf("'--mode': must be %q or %q, got %q", ModeEcho, ModeFrames, c.Mode))
	}

	if c.BufSize < 1 {
		errors = append(errors, fmt.Errorf("'--bufsize' must be at least 1"))
	} else if len(c.Marker) > c.BufSize {
		errors = append(errors, fmt.Errorf("'--marker' is longer than '--bufsize' (%d > %d)", len(c.Marker), c.BufSize))
	}

	if c.Mode == ModeFrames && c.Marker == "" {
		errors = append(errors, fmt.Errorf("'--marker' must not be empty in %s mode", ModeFrames))
	}

	return errors
}

// Forward holds the settings of the relay service.
type Forward struct {
	Target string
	Limit  int64 // bytes per direction, 0 means unlimited
}

// Validate ...
func (c *Forward) Validate() []error {
	var errors []error

	if err := validateTarget(c.Target); err != nil {
		errors = append(errors, fmt.Errorf("'--to': %s", err))
	}

	if c.Limit < 0 {
		errors = append(errors, fmt.Errorf("'--limit' must not be negative"))
	}

	return errors
}

// Connect holds the settings of the stdio client.
type Connect struct {
	Target  string
	Verbose bool
	Timeout time.Duration // idle timeout of the connection, 0 disables it

	Deps *Dependencies
}

// Validate ...
func (c *Connect) Validate() []error {
	var errors []error

	if err := validateTarget(c.Target); err != nil {
		errors = append(errors, err)
	}

	if c.Timeout < 0 {
		errors = append(errors, fmt.Errorf("'--timeout' must not be negative"))
	}

	return errors
}

func validateTarget(target string) error {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return fmt.Errorf("parsing %q: format should be host:port", target)
	}
	if host == "" {
		return fmt.Errorf("parsing %q: host must not be empty", target)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parsing %q: %s is not a number", target, portStr)
	}
	return validatePort(port)
}
