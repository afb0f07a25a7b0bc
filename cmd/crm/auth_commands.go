package main

import (
	"errors"
	"flag"
	"fmt"

	"eventcrm/internal/auth"
	"eventcrm/internal/models"
	"eventcrm/internal/store"
)

func (a *app) runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return errors.New("login requires --username and --password")
	}
	u, err := a.sessions.Login(a.st, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", u.FullName(), u.Role)
	return nil
}

func (a *app) runWhoami() error {
	u, err := a.actor()
	if err != nil {
		return err
	}
	printJSON(u)
	return nil
}

// runInitAdmin bootstraps the first administrator account. It bypasses
// the permission evaluator on purpose: there is no actor yet to
// authorize. It refuses to run once any admin exists.
func (a *app) runInitAdmin(args []string) error {
	fs := flag.NewFlagSet("init-admin", flag.ExitOnError)
	username := fs.String("username", "admin", "admin username")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("init-admin requires --email and --password")
	}
	admins, err := a.st.ListUsers(store.UserFilter{Role: models.RoleAdmin})
	if err != nil {
		return err
	}
	if len(admins) > 0 {
		return errors.New("an admin account already exists")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	u := models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "System",
		Role:         models.RoleAdmin,
	}
	if err := a.st.CreateUser(&u); err != nil {
		return err
	}
	a.lg.Infow("seeded admin account", "username", u.Username)
	fmt.Printf("admin account %s created\n", u.Username)
	return nil
}
