package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/apps/api/echo"
	"github.com/LukaszKielczewski66/fightclub/core/account"
)

// addAccount updates or creates an account.Account
func (cli *commandLine) addAccount(name, email, role string, inactive bool) error {
	na := account.NewAccount{
		Name:     name,
		Email:    email,
		Role:     account.Role(role),
		Inactive: inactive,
	}
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	acc, err := cli.accSvc.Save(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s %s <%s> %s\n", acc.ID, acc.Name, acc.Email, acc.Role)
	return nil
}

// token prints a signed bearer token for the account with email.
func (cli *commandLine) token(email string, ttl time.Duration) error {
	acc, err := cli.accSvc.GetByEmail(context.Background(), email)
	if err != nil {
		return errors.Wrap(err, "finding account by email")
	}
	if !acc.IsActive {
		return errors.Errorf("account %s is inactive", acc.Email)
	}
	tok, err := echoapi.GenerateToken(echoapi.NewClaims(acc, cli.appName, ttl), []byte(cli.secretKey))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, tok)
	return nil
}
