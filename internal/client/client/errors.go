package client

import "errors"

var (
	// ErrNotConnected is returned when a request is attempted before Connect.
	ErrNotConnected = errors.New("not connected to server")
	// ErrUnavailable is returned when the server cannot be reached or the
	// connection breaks mid-exchange.
	ErrUnavailable = errors.New("server unavailable")
)
