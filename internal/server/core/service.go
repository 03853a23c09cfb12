// Package core owns the authoritative in-memory state of the service: the
// registered users and the created projects. Every public operation is atomic
// with respect to those collections, one coarse lock per collection, and
// returns its business outcome in a protocol message. State
// changes persist through the storage collaborator, notify subscribers
// through the broadcaster and drop a system line into the project chat.
package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/worthboard/internal/cryptox"
	"github.com/dmitrijs2005/worthboard/internal/logging"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
	"github.com/dmitrijs2005/worthboard/internal/server/addrpool"
	"github.com/dmitrijs2005/worthboard/internal/server/auth"
	"github.com/dmitrijs2005/worthboard/internal/server/broadcast"
	"github.com/dmitrijs2005/worthboard/internal/server/chat"
	"github.com/dmitrijs2005/worthboard/internal/server/config"
	"github.com/dmitrijs2005/worthboard/internal/server/models"
	"github.com/dmitrijs2005/worthboard/internal/server/storage"
)

// Service implements every use case of the collaboration engine.
//
// Lock order: a goroutine holding projectsMu may take usersMu (addMember
// does), never the other way around.
type Service struct {
	usersMu sync.Mutex
	users   map[string]*models.User

	projectsMu sync.Mutex
	projects   map[string]*models.Project

	pool   *addrpool.Pool
	store  storage.Store
	bcast  *broadcast.Broadcaster
	chat   chat.Notifier
	logger logging.Logger

	tokenSecret   []byte
	tokenValidity time.Duration
}

func NewService(cfg *config.Config, store storage.Store, pool *addrpool.Pool,
	bcast *broadcast.Broadcaster, notifier chat.Notifier, logger logging.Logger) *Service {
	return &Service{
		users:         make(map[string]*models.User),
		projects:      make(map[string]*models.Project),
		pool:          pool,
		store:         store,
		bcast:         bcast,
		chat:          notifier,
		logger:        logger.With("module", "core"),
		tokenSecret:   []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Load restores the last durable snapshot: users come back offline, every
// project is rebuilt from its records and assigned a fresh chat address.
func (s *Service) Load(ctx context.Context) error {
	userRecords, err := s.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	for _, r := range userRecords {
		// the online flag is never trusted across restarts
		s.users[r.Nickname] = models.NewUser(r.Nickname, r.Password)
	}

	projectRecords, err := s.store.LoadProjects()
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	for _, r := range projectRecords {
		project := models.RestoreProject(r.Name, r.Members)
		for _, cr := range r.Cards {
			position, ok := protocol.ParseList(cr.Position)
			if !ok {
				return fmt.Errorf("project %s: card %s has unknown position %q", r.Name, cr.Name, cr.Position)
			}
			card := &models.Card{
				Name:        cr.Name,
				Description: cr.Description,
				Position:    position,
				History:     models.ParseHistoryTrail(cr.History),
			}
			if !project.PlaceCard(card) {
				return fmt.Errorf("project %s: duplicate card %s", r.Name, cr.Name)
			}
		}
		addr, ok := s.pool.Acquire()
		if !ok {
			return fmt.Errorf("project %s: chat address pool exhausted on reload", r.Name)
		}
		project.ChatAddress = addr
		s.projects[r.Name] = project
	}

	s.logger.Info(ctx, "snapshot restored", "users", len(s.users), "projects", len(s.projects))
	return nil
}

// Register creates a new user with a freshly hashed credential.
func (s *Service) Register(ctx context.Context, nickname, password string) *protocol.Message {
	hash := cryptox.HashPassword([]byte(password))

	s.usersMu.Lock()
	if _, ok := s.users[nickname]; ok {
		s.usersMu.Unlock()
		return respond(protocol.ResponseUserExists)
	}
	s.users[nickname] = models.NewUser(nickname, hash)
	s.persistUsers(ctx)
	users := s.userSnapshotLocked()
	s.usersMu.Unlock()

	s.bcast.BroadcastUsers(users)
	return respond(protocol.ResponseOK)
}

// Login verifies the credential and flips the online flag atomically;
// concurrent logins for the same nickname can succeed at most once. The OK
// response carries the user snapshot and a session token.
func (s *Service) Login(ctx context.Context, nickname, password string) *protocol.Message {
	s.usersMu.Lock()
	user, ok := s.users[nickname]
	if !ok {
		s.usersMu.Unlock()
		return respond(protocol.ResponseNotRegistered)
	}

	match, err := cryptox.CheckPassword([]byte(password), user.PasswordHash)
	if err != nil {
		s.usersMu.Unlock()
		s.logger.Error(ctx, "credential check failed", "nickname", nickname, "error", err)
		return respond(protocol.ResponseWrongPassword)
	}
	if !match {
		s.usersMu.Unlock()
		return respond(protocol.ResponseWrongPassword)
	}
	if user.Online {
		s.usersMu.Unlock()
		return respond(protocol.ResponseAlreadyLogged)
	}

	user.Online = true
	snapshot := user.Snapshot()
	users := s.userSnapshotLocked()
	s.usersMu.Unlock()

	token, err := auth.GenerateToken(nickname, s.tokenSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "nickname", nickname, "error", err)
		return respond(protocol.ResponseUnknownError)
	}

	s.bcast.BroadcastUsers(users)

	msg := respond(protocol.ResponseOK)
	msg.User = &snapshot
	msg.Token = token
	return msg
}

// Logout flips the online flag off. It is also invoked by the session layer
// on abrupt disconnect, with the nickname captured from the last successful
// request on that connection.
func (s *Service) Logout(ctx context.Context, nickname string) *protocol.Message {
	s.usersMu.Lock()
	user, ok := s.users[nickname]
	if !ok {
		s.usersMu.Unlock()
		return respond(protocol.ResponseUnknownError)
	}
	user.Online = false
	users := s.userSnapshotLocked()
	s.usersMu.Unlock()

	s.bcast.BroadcastUsers(users)
	return respond(protocol.ResponseOK)
}

// ListProjects returns every project the user is a member of. An empty
// result is a valid OK.
func (s *Service) ListProjects(ctx context.Context, nickname string) *protocol.Message {
	s.projectsMu.Lock()
	var projects []protocol.Project
	for _, name := range s.sortedProjectNamesLocked() {
		if p := s.projects[name]; p.HasMember(nickname) {
			projects = append(projects, p.Snapshot())
		}
	}
	s.projectsMu.Unlock()

	msg := respond(protocol.ResponseOK)
	msg.Projects = projects
	return msg
}

// CreateProject creates a project with nickname as its sole member. The chat
// address is acquired first, so an exhausted pool is the first failure
// checked, and released back when the name turns out to be taken: a name
// conflict never leaks an address.
func (s *Service) CreateProject(ctx context.Context, nickname, projectName string) *protocol.Message {
	addr, ok := s.pool.Acquire()
	if !ok {
		return respond(protocol.ResponseUnableCreateProject)
	}

	s.projectsMu.Lock()
	if _, exists := s.projects[projectName]; exists {
		s.projectsMu.Unlock()
		s.pool.Release(addr)
		return respond(protocol.ResponseProjectExists)
	}

	project := models.NewProject(projectName, nickname)
	project.ChatAddress = addr
	s.projects[projectName] = project
	s.persistProject(ctx, project)
	projects := s.projectSnapshotLocked()
	s.projectsMu.Unlock()

	s.bcast.BroadcastProjects(projects)
	s.sendChat(ctx, addr, fmt.Sprintf("%s created project %s", nickname, projectName))
	return respond(protocol.ResponseOK)
}

// AddMember adds a registered user to the project's member list.
func (s *Service) AddMember(ctx context.Context, nickname, projectName, newMember string) *protocol.Message {
	s.projectsMu.Lock()
	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		s.projectsMu.Unlock()
		return respond(outcome)
	}

	s.usersMu.Lock()
	_, registered := s.users[newMember]
	s.usersMu.Unlock()
	if !registered {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseNotRegistered)
	}

	if !project.AddMember(newMember) {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseMemberExists)
	}
	s.persistProject(ctx, project)
	projects := s.projectSnapshotLocked()
	addr := project.ChatAddress
	s.projectsMu.Unlock()

	s.bcast.BroadcastProjects(projects)
	s.sendChat(ctx, addr, fmt.Sprintf("%s added a new member: %s", nickname, newMember))
	return respond(protocol.ResponseOK)
}

// ShowMembers returns the ordered member list of the project.
func (s *Service) ShowMembers(ctx context.Context, nickname, projectName string) *protocol.Message {
	s.projectsMu.Lock()
	defer s.projectsMu.Unlock()

	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		return respond(outcome)
	}

	msg := respond(protocol.ResponseOK)
	msg.Members = append([]string(nil), project.Members...)
	return msg
}

// ShowCards returns a snapshot of every card in the project.
func (s *Service) ShowCards(ctx context.Context, nickname, projectName string) *protocol.Message {
	s.projectsMu.Lock()
	defer s.projectsMu.Unlock()

	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		return respond(outcome)
	}

	cards := []protocol.Card{}
	for _, c := range project.Cards() {
		cards = append(cards, c.Snapshot())
	}

	msg := respond(protocol.ResponseOK)
	msg.Cards = cards
	return msg
}

// ShowCard returns the snapshot of one named card.
func (s *Service) ShowCard(ctx context.Context, nickname, projectName, cardName string) *protocol.Message {
	s.projectsMu.Lock()
	defer s.projectsMu.Unlock()

	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		return respond(outcome)
	}

	card, ok := project.Card(cardName)
	if !ok {
		return respond(protocol.ResponseNonexistentCard)
	}

	snapshot := card.Snapshot()
	msg := respond(protocol.ResponseOK)
	msg.Card = &snapshot
	return msg
}

// AddCard creates a card directly in TODO.
func (s *Service) AddCard(ctx context.Context, nickname, projectName, cardName, description string) *protocol.Message {
	s.projectsMu.Lock()
	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		s.projectsMu.Unlock()
		return respond(outcome)
	}

	if !project.AddCard(models.NewCard(cardName, description)) {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseCardExists)
	}
	s.persistProject(ctx, project)
	addr := project.ChatAddress
	s.projectsMu.Unlock()

	s.sendChat(ctx, addr, fmt.Sprintf("%s added card %s", nickname, cardName))
	return respond(protocol.ResponseOK)
}

// MoveCard relocates a card between lists, enforcing the workflow rules.
// List names are normalized to canonical upper case here; unrecognized
// names map to NONEXISTENT_LIST.
func (s *Service) MoveCard(ctx context.Context, nickname, projectName, cardName, sourceList, destList string) *protocol.Message {
	s.projectsMu.Lock()
	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		s.projectsMu.Unlock()
		return respond(outcome)
	}

	source, ok := protocol.ParseList(sourceList)
	if !ok {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseNonexistentList)
	}
	dest, ok := protocol.ParseList(destList)
	if !ok {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseNonexistentList)
	}

	if source == dest {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseCardExists)
	}
	if !transitionAllowed(source, dest) {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseMoveCardForbidden)
	}
	if !project.MoveCard(cardName, source, dest) {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseNonexistentCard)
	}
	s.persistProject(ctx, project)
	addr := project.ChatAddress
	s.projectsMu.Unlock()

	s.sendChat(ctx, addr, fmt.Sprintf("%s moved card %s from list %s to list %s", nickname, cardName, source, dest))
	return respond(protocol.ResponseOK)
}

// CancelProject destroys the project once every card sits in DONE, releasing
// its chat address back into the pool and deleting its persisted data.
func (s *Service) CancelProject(ctx context.Context, nickname, projectName string) *protocol.Message {
	s.projectsMu.Lock()
	project, outcome := s.memberProjectLocked(nickname, projectName)
	if outcome != protocol.ResponseOK {
		s.projectsMu.Unlock()
		return respond(outcome)
	}

	if !project.AllCardsDone() {
		s.projectsMu.Unlock()
		return respond(protocol.ResponseDeleteForbidden)
	}

	s.pool.Release(project.ChatAddress)
	delete(s.projects, projectName)
	if err := s.store.DeleteProject(projectName); err != nil {
		s.logger.Error(ctx, "deleting persisted project failed", "project", projectName, "error", err)
	}
	projects := s.projectSnapshotLocked()
	s.projectsMu.Unlock()

	s.bcast.BroadcastProjects(projects)
	return respond(protocol.ResponseOK)
}

// Subscribe registers a push handle and delivers the catch-up snapshots.
func (s *Service) Subscribe(sub broadcast.Subscriber) {
	s.usersMu.Lock()
	users := s.userSnapshotLocked()
	s.usersMu.Unlock()

	s.projectsMu.Lock()
	projects := s.projectSnapshotLocked()
	s.projectsMu.Unlock()

	s.bcast.Subscribe(sub, users, projects)
}

// Unsubscribe removes a push handle; it is never pushed to again.
func (s *Service) Unsubscribe(sub broadcast.Subscriber) {
	s.bcast.Unsubscribe(sub)
}

// memberProjectLocked resolves a project and checks caller membership. Both a
// missing project and a non-member caller yield NONEXISTENT_PROJECT, so a
// caller cannot probe for names of projects it does not belong to.
// projectsMu must be held.
func (s *Service) memberProjectLocked(nickname, projectName string) (*models.Project, protocol.Response) {
	project, ok := s.projects[projectName]
	if !ok || !project.HasMember(nickname) {
		return nil, protocol.ResponseNonexistentProject
	}
	return project, protocol.ResponseOK
}

func (s *Service) userSnapshotLocked() []protocol.User {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)

	users := make([]protocol.User, 0, len(names))
	for _, name := range names {
		users = append(users, s.users[name].Snapshot())
	}
	return users
}

func (s *Service) sortedProjectNamesLocked() []string {
	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) projectSnapshotLocked() []protocol.Project {
	projects := make([]protocol.Project, 0, len(s.projects))
	for _, name := range s.sortedProjectNamesLocked() {
		projects = append(projects, s.projects[name].Snapshot())
	}
	return projects
}

// persistUsers writes the user collection once, on the calling goroutine.
// Failures are reported to the operator, never to the caller: a committed
// in-memory change is not rolled back. usersMu must be held.
func (s *Service) persistUsers(ctx context.Context) {
	records := make([]storage.UserRecord, 0, len(s.users))
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		u := s.users[name]
		records = append(records, storage.UserRecord{Nickname: u.Nickname, Password: u.PasswordHash, Online: u.Online})
	}
	if err := s.store.SaveUsers(records); err != nil {
		s.logger.Error(ctx, "persisting users failed", "error", err)
	}
}

// persistProject writes one project. Same failure policy as persistUsers.
// projectsMu must be held.
func (s *Service) persistProject(ctx context.Context, project *models.Project) {
	cards := project.Cards()
	records := make([]storage.CardRecord, 0, len(cards))
	for _, c := range cards {
		records = append(records, storage.CardRecord{
			Name:        c.Name,
			Description: c.Description,
			Position:    c.Position,
			History:     c.HistoryTrail(),
		})
	}
	record := storage.ProjectRecord{
		Name:    project.Name,
		Members: append([]string(nil), project.Members...),
		Cards:   records,
	}
	if err := s.store.SaveProject(record); err != nil {
		s.logger.Error(ctx, "persisting project failed", "project", project.Name, "error", err)
	}
}

func (s *Service) sendChat(ctx context.Context, addr, text string) {
	if err := s.chat.Notify(addr, text); err != nil {
		s.logger.Warn(ctx, "chat notification failed", "addr", addr, "error", err)
	}
}

func respond(outcome protocol.Response) *protocol.Message {
	return &protocol.Message{Response: outcome}
}
