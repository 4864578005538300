package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, role string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if !validRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != core.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{Name: name, Email: email, Role: role})
		return err
	}

	_, err = cli.usrSvc.Update(ctx, usr.ID, user.UpdateUser{Name: name, Email: email, Role: role})
	return err
}

func validRole(role string) bool {
	for _, r := range user.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
