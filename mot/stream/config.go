/*
NAME
  config.go

DESCRIPTION
  config.go holds the shared decoder options used by every stream
  decoder constructor in this package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package stream implements the lazy, pull-based decoders that turn a
// byte slice, an io.Reader, or an upstream sequence of packets into a
// sequence of datagroups or packets, reporting CRC failures to an
// optional callback instead of aborting.
package stream

import "github.com/ausocean/utils/logging"

// ErrorCallback receives a decode error encountered mid-stream, wrapped
// with context; its cause is one of the package wire error types. After
// a CRC mismatch the decoder keeps running, as do the datagroup decoders
// in resync mode after any rejected header. Any other error ends the
// byte-slice and reader decoders' sequences, while the decoder that
// reassembles datagroups from packets keeps consuming packets.
type ErrorCallback func(err error)

type config struct {
	resync  bool
	onError ErrorCallback
	logger  logging.Logger
}

// Option configures a stream decoder.
type Option func(*config)

// WithResync controls behaviour on a CRC mismatch: true advances the
// cursor by exactly one byte and retries; false (the default) skips
// the whole declared-size frame. With resync on, the datagroup decoders
// also advance by one byte past a header they reject as unsupported
// instead of ending the sequence.
func WithResync(resync bool) Option {
	return func(c *config) { c.resync = resync }
}

// WithErrorCallback installs cb to observe non-fatal decode errors.
func WithErrorCallback(cb ErrorCallback) Option {
	return func(c *config) { c.onError = cb }
}

// WithLogger installs a logger. Decoders default to a no-op logger
// when none is supplied.
func WithLogger(l logging.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) *config {
	c := &config{onError: func(error) {}, logger: noopLogger{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// noopLogger discards everything; it is the default so callers that
// do not care about logging never need to wire one up.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})   {}
func (noopLogger) Info(string, ...interface{})    {}
func (noopLogger) Warning(string, ...interface{}) {}
func (noopLogger) Error(string, ...interface{})   {}
func (noopLogger) Fatal(string, ...interface{})   {}
