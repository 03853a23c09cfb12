package cli

import (
	"context"

	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

func (a *App) Cards(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	cards, outcome, err := a.api.ShowCards(ctx, project)
	if err != nil {
		a.printError(err)
		return err
	}
	if outcome != protocol.ResponseOK {
		a.printOutcome(outcome)
		return nil
	}

	a.printBoard(cards)
	return nil
}

func (a *App) Card(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	name, err := GetSimpleText(a.reader, "Enter card name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	card, outcome, err := a.api.ShowCard(ctx, project, name)
	if err != nil {
		a.printError(err)
		return err
	}
	if outcome != protocol.ResponseOK {
		a.printOutcome(outcome)
		return nil
	}

	a.printCard(card)
	return nil
}

func (a *App) AddCard(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	name, err := GetSimpleText(a.reader, "Enter card name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	description, err := GetSimpleText(a.reader, "Enter card description", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	outcome, err := a.api.AddCard(ctx, project, name, description)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}

func (a *App) MoveCard(ctx context.Context) error {

	project, err := GetSimpleText(a.reader, "Enter project name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	name, err := GetSimpleText(a.reader, "Enter card name", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	source, err := GetSimpleText(a.reader, "Move from list (todo, inprogress, toberevised, done)", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	dest, err := GetSimpleText(a.reader, "Move to list", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	outcome, err := a.api.MoveCard(ctx, project, name, source, dest)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}
