// Package storage is the persistence boundary of the server: it loads the
// last durable snapshot at startup and is asked to persist after every
// mutation. The store is trusted to durably apply the last write it is given;
// there are no transactions and no rollback.
package storage

// UserRecord is the persisted form of one registered user. The online flag is
// written for completeness but ignored on reload: every user starts offline.
type UserRecord struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Online   bool   `json:"online"`
}

// CardRecord is the persisted form of one card. Position is the canonical
// name of the list the card belongs to and is authoritative on reload;
// History is the human-readable ordered trail, e.g. "TODO -> INPROGRESS".
type CardRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    string `json:"position"`
	History     string `json:"history"`
}

// ProjectRecord is the persisted form of one project.
type ProjectRecord struct {
	Name    string
	Members []string
	Cards   []CardRecord
}

// Store is the durable snapshot collaborator.
type Store interface {
	LoadUsers() ([]UserRecord, error)
	SaveUsers(users []UserRecord) error
	LoadProjects() ([]ProjectRecord, error)
	SaveProject(project ProjectRecord) error
	DeleteProject(name string) error
}
