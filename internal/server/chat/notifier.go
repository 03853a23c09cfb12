// Package chat delivers system-generated notification lines into a project's
// chat channel. The core only knows the Notifier interface; the transport
// itself (UDP multicast) is a collaborator detail.
package chat

// Notifier delivers one short system text line to the chat channel with the
// given address after a state-changing operation.
type Notifier interface {
	Notify(addr, text string) error
}
