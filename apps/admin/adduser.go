package main

import (
	"context"
	"fmt"
)

// addUser updates or creates a user, granting every role when isAdmin.
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, isAdmin bool) error {
	usr, err := cli.usrSvc.UpdateOrCreate(ctx, name, uname, email, pwd, isAdmin)
	if err != nil {
		return err
	}
	fmt.Printf("user %s (%s) saved\n", usr.Username, usr.ID)
	return nil
}
