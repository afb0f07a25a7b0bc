package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"eventcrm/internal/services"
	"eventcrm/internal/store"
)

const contractUsage = "usage: crm contract create|update|delete|list|sign|pay|record-payment [flags]"

func (a *app) runContract(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(contractUsage)
	}
	actor, err := a.actor()
	if err != nil {
		return err
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("contract create", flag.ExitOnError)
		name := fs.String("name", "", "contract name")
		description := fs.String("description", "", "description")
		clientID := fs.String("client-id", "", "client id")
		amount := fs.Float64("total-amount", 0, "total amount")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := a.contracts.Create(ctx, actor, services.CreateContractInput{
			Name:        *name,
			Description: *description,
			ClientID:    *clientID,
			TotalAmount: *amount,
		})
		if err != nil {
			return err
		}
		printJSON(c)
	case "update":
		fs := flag.NewFlagSet("contract update", flag.ExitOnError)
		id := fs.String("id", "", "contract id")
		name := fs.String("name", "", "new name")
		description := fs.String("description", "", "new description")
		amount := fs.Float64("total-amount", -1, "new total amount")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch services.ContractPatch
		if *name != "" {
			patch.Name = name
		}
		if *description != "" {
			patch.Description = description
		}
		if *amount >= 0 {
			patch.TotalAmount = amount
		}
		c, err := a.contracts.Update(ctx, actor, *id, patch)
		if err != nil {
			return err
		}
		printJSON(c)
	case "delete":
		fs := flag.NewFlagSet("contract delete", flag.ExitOnError)
		id := fs.String("id", "", "contract id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.contracts.Delete(ctx, actor, *id); err != nil {
			return err
		}
		fmt.Println("contract deleted, together with its events")
	case "list":
		fs := flag.NewFlagSet("contract list", flag.ExitOnError)
		clientID := fs.String("client-id", "", "filter by client")
		commercialID := fs.String("commercial-id", "", "filter by commercial")
		signedOnly := fs.Bool("signed", false, "only signed contracts")
		unsignedOnly := fs.Bool("unsigned", false, "only unsigned contracts")
		paidOnly := fs.Bool("paid", false, "only paid contracts")
		unpaidOnly := fs.Bool("unpaid", false, "only unpaid contracts")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		f := store.ContractFilter{ClientID: *clientID, CommercialID: *commercialID}
		if *signedOnly {
			t := true
			f.Signed = &t
		}
		if *unsignedOnly {
			fl := false
			f.Signed = &fl
		}
		if *paidOnly {
			t := true
			f.Paid = &t
		}
		if *unpaidOnly {
			fl := false
			f.Paid = &fl
		}
		contracts, err := a.contracts.List(ctx, actor, f)
		if err != nil {
			return err
		}
		printJSON(contracts)
	case "sign":
		fs := flag.NewFlagSet("contract sign", flag.ExitOnError)
		id := fs.String("id", "", "contract id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := a.contracts.MarkSigned(ctx, actor, *id)
		if err != nil {
			return err
		}
		printJSON(c)
	case "pay":
		fs := flag.NewFlagSet("contract pay", flag.ExitOnError)
		id := fs.String("id", "", "contract id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := a.contracts.MarkPaid(ctx, actor, *id)
		if err != nil {
			return err
		}
		printJSON(c)
	case "record-payment":
		fs := flag.NewFlagSet("contract record-payment", flag.ExitOnError)
		id := fs.String("id", "", "contract id")
		amount := fs.Float64("amount", 0, "payment amount")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		c, err := a.contracts.RecordPayment(ctx, actor, *id, *amount)
		if err != nil {
			return err
		}
		printJSON(c)
	default:
		return errors.New(contractUsage)
	}
	return nil
}
