package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

// addProfile updates the profile matching `uname` or `email`, or creates it.
func (cli *commandLine) addProfile(name, uname, email, role, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	lookup := uname
	if lookup == "" {
		lookup = email
	}
	p, err := cli.profileSvc.GetByUsernameOrEmail(ctx, lookup)
	if err != nil {
		if errors.Cause(err) != profile.ErrNotFound {
			return err
		}
		if name == "" {
			name = uname
		}
		np := profile.NewProfile{Name: name, Username: uname, Email: email, Role: role, Password: pwd, PasswordConfirm: pwd}
		if err := np.Validate(ctx, cli.validate, cli.profileSvc); err != nil {
			return err
		}
		_, err = cli.profileSvc.Create(ctx, np)
		return err
	}

	active := true
	up := profile.UpdateProfile{Name: name, Username: uname, Email: email, Role: role, IsActive: &active, Password: pwd, PasswordConfirm: pwd}
	if err := up.Validate(ctx, p, cli.validate, cli.profileSvc); err != nil {
		return err
	}
	_, err = cli.profileSvc.Update(ctx, p, up)
	return err
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	_, err := cli.profileSvc.ResetPassword(context.Background(), uname, pwd)
	return err
}
