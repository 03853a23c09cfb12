package core

import "github.com/dmitrijs2005/worthboard/internal/protocol"

// allowedMoves is the card workflow. A card only ever moves along one of
// these edges; everything else is forbidden, including any move out of
// DONE.
var allowedMoves = map[string][]string{
	protocol.ListTodo:        {protocol.ListInProgress},
	protocol.ListInProgress:  {protocol.ListToBeRevised, protocol.ListDone},
	protocol.ListToBeRevised: {protocol.ListInProgress, protocol.ListDone},
	protocol.ListDone:        {},
}

func transitionAllowed(source, dest string) bool {
	for _, d := range allowedMoves[source] {
		if d == dest {
			return true
		}
	}
	return false
}
