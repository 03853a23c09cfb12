package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/worthboard/internal/filex"
)

const (
	usersFilename   = "users.json"
	membersFilename = "members.json"
)

// FileStore persists snapshots under a single data directory: a users file at
// the root, plus one directory per project holding a members record and one
// record per card.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadUsers() ([]UserRecord, error) {
	var users []UserRecord
	err := filex.ReadJSON(filepath.Join(s.dir, usersFilename), &users)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *FileStore) SaveUsers(users []UserRecord) error {
	return filex.WriteJSON(filepath.Join(s.dir, usersFilename), users)
}

func (s *FileStore) LoadProjects() ([]ProjectRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var projects []ProjectRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		project, err := s.loadProject(entry.Name())
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func (s *FileStore) loadProject(name string) (ProjectRecord, error) {
	projectDir := filepath.Join(s.dir, name)

	var members []string
	if err := filex.ReadJSON(filepath.Join(projectDir, membersFilename), &members); err != nil {
		return ProjectRecord{}, fmt.Errorf("loading members of %s: %w", name, err)
	}

	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return ProjectRecord{}, err
	}

	var cards []CardRecord
	for _, entry := range entries {
		filename := entry.Name()
		if entry.IsDir() || filename == membersFilename || !strings.HasSuffix(filename, ".json") {
			continue
		}
		var card CardRecord
		if err := filex.ReadJSON(filepath.Join(projectDir, filename), &card); err != nil {
			return ProjectRecord{}, fmt.Errorf("loading card %s of %s: %w", filename, name, err)
		}
		cards = append(cards, card)
	}

	return ProjectRecord{Name: name, Members: members, Cards: cards}, nil
}

func (s *FileStore) SaveProject(project ProjectRecord) error {
	if err := checkName(project.Name); err != nil {
		return err
	}
	projectDir := filepath.Join(s.dir, project.Name)
	if err := filex.EnsureDir(projectDir); err != nil {
		return err
	}

	if err := filex.WriteJSON(filepath.Join(projectDir, membersFilename), project.Members); err != nil {
		return err
	}
	for _, card := range project.Cards {
		if err := checkName(card.Name); err != nil {
			return err
		}
		if err := filex.WriteJSON(filepath.Join(projectDir, card.Name+".json"), card); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) DeleteProject(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.dir, name))
}

// checkName rejects names that could escape the data directory when used as
// a path element.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("unusable name %q", name)
	}
	return nil
}
