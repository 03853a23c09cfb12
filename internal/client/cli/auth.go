package cli

import (
	"context"

	"github.com/dmitrijs2005/worthboard/internal/common"
	"github.com/dmitrijs2005/worthboard/internal/protocol"
)

func (a *App) Register(ctx context.Context) error {

	nickname, err := GetSimpleText(a.reader, "Enter nickname", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		a.printError(err)
		return err
	}
	defer common.WipeByteArray(password)

	outcome, err := a.api.Register(ctx, nickname, password)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	nickname, err := GetSimpleText(a.reader, "Enter nickname", a.out)
	if err != nil {
		a.printError(err)
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		a.printError(err)
		return err
	}
	defer common.WipeByteArray(password)

	outcome, err := a.api.Login(ctx, nickname, password)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printOutcome(outcome)

	// the push channel keeps the users and projects views current
	if outcome == protocol.ResponseOK {
		a.startSubscription(ctx)
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {

	a.stopSubscription()

	outcome, err := a.api.Logout(ctx)
	if err != nil {
		a.printError(err)
		return err
	}
	a.printOutcome(outcome)

	// the server closes the session connection after LOGOUT; open a fresh
	// one so the user can log in again
	if err := a.api.Connect(ctx); err != nil {
		a.printError(err)
		return err
	}
	return nil
}
