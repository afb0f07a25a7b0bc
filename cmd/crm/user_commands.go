package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"eventcrm/internal/models"
	"eventcrm/internal/services"
	"eventcrm/internal/store"
)

const userUsage = "usage: crm user create|update|delete|list|reassign [flags]"

func (a *app) runUser(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(userUsage)
	}
	actor, err := a.actor()
	if err != nil {
		return err
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		username := fs.String("username", "", "unique username")
		email := fs.String("email", "", "unique email")
		password := fs.String("password", "", "initial password")
		firstName := fs.String("first-name", "", "first name")
		lastName := fs.String("last-name", "", "last name")
		role := fs.String("role", "", "admin|commercial|support|gestion")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		u, err := a.users.Create(ctx, actor, services.CreateUserInput{
			Username:  *username,
			Email:     *email,
			Password:  *password,
			FirstName: *firstName,
			LastName:  *lastName,
			Role:      models.Role(*role),
		})
		if err != nil {
			return err
		}
		printJSON(u)
	case "update":
		fs := flag.NewFlagSet("user update", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		email := fs.String("email", "", "new email")
		firstName := fs.String("first-name", "", "new first name")
		lastName := fs.String("last-name", "", "new last name")
		role := fs.String("role", "", "new role")
		password := fs.String("password", "", "new password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch services.UserPatch
		if *email != "" {
			patch.Email = email
		}
		if *firstName != "" {
			patch.FirstName = firstName
		}
		if *lastName != "" {
			patch.LastName = lastName
		}
		if *role != "" {
			r := models.Role(*role)
			patch.Role = &r
		}
		if *password != "" {
			patch.Password = password
		}
		u, err := a.users.Update(ctx, actor, *id, patch)
		if err != nil {
			return err
		}
		printJSON(u)
	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		id := fs.String("id", "", "user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.users.Delete(ctx, actor, *id); err != nil {
			return err
		}
		fmt.Println("user deleted")
	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		role := fs.String("role", "", "filter by role")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		users, err := a.users.List(ctx, actor, store.UserFilter{Role: models.Role(*role)})
		if err != nil {
			return err
		}
		printJSON(users)
	case "reassign":
		fs := flag.NewFlagSet("user reassign", flag.ExitOnError)
		from := fs.String("from", "", "current commercial id")
		to := fs.String("to", "", "new commercial id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		n, err := a.users.Reassign(ctx, actor, *from, *to)
		if err != nil {
			return err
		}
		fmt.Printf("%d client(s) reassigned\n", n)
	default:
		return errors.New(userUsage)
	}
	return nil
}
