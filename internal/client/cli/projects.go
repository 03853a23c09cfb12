package cli

import (
	"context"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

// Users shows the pushed view of all registered users and their presence.
func (a *App) Users(ctx context.Context) error {
	a.mu.Lock()
	users := a.users
	a.mu.Unlock()

	a.printUsers(users)
	return nil
}

func (a *App) Projects(ctx context.Context) error {

	projects, outcome, err := a.api.ListProjects(ctx)
	if err != nil {
		a.printError(err)
		return err
	}
	if outcome != protocol.ResponseOK {
		a.printOutcome(outcome)
		return nil
	}

	a.mu.Lock()
	a.projects = projects
	a.mu.Unlock()

	a.printProjects(projects)
	return nil
}

func (a *App) CreateProject(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	outcome, err := a.api.CreateProject(ctx, name)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}

func (a *App) AddMember(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	member, err := GetSimpleText(a.reader, "Enter nickname of the new member", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	outcome, err := a.api.AddMember(ctx, project, member)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}

func (a *App) Members(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	members, outcome, err := a.api.ShowMembers(ctx, project)
	if err != nil {
		a.printError(err)
		return err
	}
	if outcome != protocol.ResponseOK {
		a.printOutcome(outcome)
		return nil
	}

	for _, m := range members {
		printlnFn("  " + m)
	}
	return nil
}

func (a *App) CancelProject(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	outcome, err := a.api.CancelProject(ctx, project)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}
