package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"eventcrm/internal/services"
	"eventcrm/internal/store"
)

const clientUsage = "usage: crm client create|update|delete|list [flags]"

func (a *app) runClient(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(clientUsage)
	}
	actor, err := a.actor()
	if err != nil {
		return err
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("client create", flag.ExitOnError)
		firstName := fs.String("first-name", "", "first name")
		lastName := fs.String("last-name", "", "last name")
		email := fs.String("email", "", "unique email")
		phone := fs.String("phone", "", "phone number")
		company := fs.String("company", "", "company name")
		commercialID := fs.String("commercial-id", "", "owning commercial (defaults to the acting commercial)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := a.clients.Create(ctx, actor, services.CreateClientInput{
			FirstName:    *firstName,
			LastName:     *lastName,
			Email:        *email,
			Phone:        *phone,
			CompanyName:  *company,
			CommercialID: *commercialID,
		})
		if err != nil {
			return err
		}
		printJSON(c)
	case "update":
		fs := flag.NewFlagSet("client update", flag.ExitOnError)
		id := fs.String("id", "", "client id")
		firstName := fs.String("first-name", "", "new first name")
		lastName := fs.String("last-name", "", "new last name")
		email := fs.String("email", "", "new email")
		phone := fs.String("phone", "", "new phone number")
		company := fs.String("company", "", "new company name")
		commercialID := fs.String("commercial-id", "", "new owning commercial")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch services.ClientPatch
		if *firstName != "" {
			patch.FirstName = firstName
		}
		if *lastName != "" {
			patch.LastName = lastName
		}
		if *email != "" {
			patch.Email = email
		}
		if *phone != "" {
			patch.Phone = phone
		}
		if *company != "" {
			patch.CompanyName = company
		}
		if *commercialID != "" {
			patch.CommercialID = commercialID
		}
		c, err := a.clients.Update(ctx, actor, *id, patch)
		if err != nil {
			return err
		}
		printJSON(c)
	case "delete":
		fs := flag.NewFlagSet("client delete", flag.ExitOnError)
		id := fs.String("id", "", "client id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.clients.Delete(ctx, actor, *id); err != nil {
			return err
		}
		fmt.Println("client deleted, together with its contracts and events")
	case "list":
		fs := flag.NewFlagSet("client list", flag.ExitOnError)
		commercialID := fs.String("commercial-id", "", "filter by owning commercial")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		clients, err := a.clients.List(ctx, actor, store.ClientFilter{CommercialID: *commercialID})
		if err != nil {
			return err
		}
		printJSON(clients)
	default:
		return errors.New(clientUsage)
	}
	return nil
}
