package models

import "github.com/dmitrijs2005/worthboard/internal/protocol"

// Project is a named shared workspace. Members is ordered, the creator is
// member #0 and membership only grows. Every card belongs to exactly one of
// the four workflow lists at any instant and appears exactly once in the flat
// card index; AddCard, PlaceCard and MoveCard preserve that invariant
// together.
type Project struct {
	Name        string
	Members     []string
	ChatAddress string

	lists map[string][]*Card
	cards map[string]*Card
}

func NewProject(name, creator string) *Project {
	p := &Project{
		Name:    name,
		Members: []string{creator},
		lists: map[string][]*Card{
			protocol.ListTodo:        nil,
			protocol.ListInProgress:  nil,
			protocol.ListToBeRevised: nil,
			protocol.ListDone:        nil,
		},
		cards: map[string]*Card{},
	}
	return p
}

func (p *Project) HasMember(nickname string) bool {
	for _, m := range p.Members {
		if m == nickname {
			return true
		}
	}
	return false
}

// AddMember appends nickname to the member list. Returns false if already a
// member.
func (p *Project) AddMember(nickname string) bool {
	if p.HasMember(nickname) {
		return false
	}
	p.Members = append(p.Members, nickname)
	return true
}

// Card looks up a card by name in the flat index.
func (p *Project) Card(name string) (*Card, bool) {
	c, ok := p.cards[name]
	return c, ok
}

// Cards returns every card of the project, TODO list first, then INPROGRESS,
// TOBEREVISED and DONE.
func (p *Project) Cards() []*Card {
	out := make([]*Card, 0, len(p.cards))
	for _, list := range []string{protocol.ListTodo, protocol.ListInProgress, protocol.ListToBeRevised, protocol.ListDone} {
		out = append(out, p.lists[list]...)
	}
	return out
}

// AddCard places a brand-new card into TODO. Returns false if a card of the
// same name already exists in the project.
func (p *Project) AddCard(c *Card) bool {
	if _, ok := p.cards[c.Name]; ok {
		return false
	}
	p.cards[c.Name] = c
	p.lists[protocol.ListTodo] = append(p.lists[protocol.ListTodo], c)
	return true
}

// PlaceCard inserts a reloaded card into the list named by its Position.
// Used only when rebuilding a project from a persisted snapshot.
func (p *Project) PlaceCard(c *Card) bool {
	if _, ok := p.cards[c.Name]; ok {
		return false
	}
	if _, ok := p.lists[c.Position]; !ok {
		return false
	}
	p.cards[c.Name] = c
	p.lists[c.Position] = append(p.lists[c.Position], c)
	return true
}

// InList reports whether the named card currently sits in the given list.
func (p *Project) InList(cardName, list string) bool {
	for _, c := range p.lists[list] {
		if c.Name == cardName {
			return true
		}
	}
	return false
}

// MoveCard relocates the named card from source to dest and appends dest to
// its history. Returns false when the card is not actually in the source
// list; the workflow rules themselves are enforced by the caller.
func (p *Project) MoveCard(cardName, source, dest string) bool {
	src := p.lists[source]
	for i, c := range src {
		if c.Name == cardName {
			p.lists[source] = append(src[:i:i], src[i+1:]...)
			c.MoveTo(dest)
			p.lists[dest] = append(p.lists[dest], c)
			return true
		}
	}
	return false
}

// AllCardsDone reports whether every card sits in DONE. A project with zero
// cards trivially satisfies this.
func (p *Project) AllCardsDone() bool {
	for _, c := range p.cards {
		if c.Position != protocol.ListDone {
			return false
		}
	}
	return true
}

func (p *Project) Snapshot() protocol.Project {
	members := make([]string, len(p.Members))
	copy(members, p.Members)

	all := p.Cards()
	cards := make([]protocol.Card, 0, len(all))
	for _, c := range all {
		cards = append(cards, c.Snapshot())
	}

	return protocol.Project{
		Name:        p.Name,
		Members:     members,
		ChatAddress: p.ChatAddress,
		Cards:       cards,
	}
}

// RestoreProject rebuilds an empty project shell from persisted state; cards
// are reinserted afterwards with PlaceCard.
func RestoreProject(name string, members []string) *Project {
	p := NewProject(name, "")
	p.Members = append([]string(nil), members...)
	return p
}
