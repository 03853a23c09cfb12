package models

import (
	"strings"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// historySeparator joins the persisted trail of list names, oldest first.
const historySeparator = " -> "

// Card is a unit of work. Name is unique within its project; Description is
// immutable after creation. Position is the canonical name of the list the
// card currently sits in, and History is the append-only ordered trail of
// every list it has occupied, starting with TODO.
type Card struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Position    string   `json:"position"`
	History     []string `json:"-"`
}

// NewCard creates a card directly in TODO.
func NewCard(name, description string) *Card {
	return &Card{
		Name:        name,
		Description: description,
		Position:    protocol.ListTodo,
		History:     []string{protocol.ListTodo},
	}
}

// MoveTo relocates the card to dest, appending dest to its history. dest must
// already be canonical; the caller validates the transition.
func (c *Card) MoveTo(dest string) {
	c.Position = dest
	c.History = append(c.History, dest)
}

// HistoryTrail renders the move history in its persisted form, e.g.
// "TODO -> INPROGRESS -> DONE".
func (c *Card) HistoryTrail() string {
	return strings.Join(c.History, historySeparator)
}

// ParseHistoryTrail is the inverse of HistoryTrail, used on snapshot reload.
// An empty trail yields the single-entry creation history.
func ParseHistoryTrail(trail string) []string {
	if trail == "" {
		return []string{protocol.ListTodo}
	}
	return strings.Split(trail, historySeparator)
}

func (c *Card) Snapshot() protocol.Card {
	history := make([]string, len(c.History))
	copy(history, c.History)
	return protocol.Card{
		Name:        c.Name,
		Description: c.Description,
		Position:    c.Position,
		History:     history,
	}
}
