// Package models holds the in-memory entities of the collaboration service:
// users, projects and cards. The types carry pure state plus small
// invariant-preserving operations; all cross-entity rules and locking live in
// the core service.
package models

import "github.com/dmitrijs2005/worthboard/internal/protocol"

// User is a registered account. The nickname is the immutable identity;
// PasswordHash is the encoded argon2id credential, never a plaintext
// password. Online is toggled by login/logout under the core user lock.
type User struct {
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"password"`
	Online       bool   `json:"online"`
}

func NewUser(nickname, passwordHash string) *User {
	return &User{Nickname: nickname, PasswordHash: passwordHash}
}

func (u *User) Snapshot() protocol.User {
	return protocol.User{Nickname: u.Nickname, Online: u.Online}
}
