package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"eventcrm/internal/services"
	"eventcrm/internal/store"
)

const eventUsage = "usage: crm event create|update|delete|list|assign-support|unassign-support [flags]"

// parseWhen accepts RFC3339 or a local "2006-01-02 15:04" timestamp.
func parseWhen(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", s, time.Local)
}

func (a *app) runEvent(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New(eventUsage)
	}
	actor, err := a.actor()
	if err != nil {
		return err
	}
	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("event create", flag.ExitOnError)
		name := fs.String("name", "", "event name")
		description := fs.String("description", "", "description")
		contractID := fs.String("contract-id", "", "signed contract id")
		start := fs.String("start", "", "start date (RFC3339 or '2006-01-02 15:04')")
		end := fs.String("end", "", "end date")
		location := fs.String("location", "", "location")
		attendees := fs.Int("attendees", 0, "attendee count")
		notes := fs.String("notes", "", "notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		startAt, err := parseWhen(*start)
		if err != nil {
			return fmt.Errorf("parse --start: %w", err)
		}
		endAt, err := parseWhen(*end)
		if err != nil {
			return fmt.Errorf("parse --end: %w", err)
		}
		e, err := a.events.Create(ctx, actor, services.CreateEventInput{
			Name:        *name,
			Description: *description,
			ContractID:  *contractID,
			StartDate:   startAt,
			EndDate:     endAt,
			Location:    *location,
			Attendees:   *attendees,
			Notes:       *notes,
		})
		if err != nil {
			return err
		}
		printJSON(e)
	case "update":
		fs := flag.NewFlagSet("event update", flag.ExitOnError)
		id := fs.String("id", "", "event id")
		name := fs.String("name", "", "new name")
		description := fs.String("description", "", "new description")
		start := fs.String("start", "", "new start date")
		end := fs.String("end", "", "new end date")
		location := fs.String("location", "", "new location")
		attendees := fs.Int("attendees", -1, "new attendee count")
		notes := fs.String("notes", "", "new notes")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		var patch services.EventPatch
		if *name != "" {
			patch.Name = name
		}
		if *description != "" {
			patch.Description = description
		}
		if *start != "" {
			t, err := parseWhen(*start)
			if err != nil {
				return fmt.Errorf("parse --start: %w", err)
			}
			patch.StartDate = &t
		}
		if *end != "" {
			t, err := parseWhen(*end)
			if err != nil {
				return fmt.Errorf("parse --end: %w", err)
			}
			patch.EndDate = &t
		}
		if *location != "" {
			patch.Location = location
		}
		if *attendees >= 0 {
			patch.Attendees = attendees
		}
		if *notes != "" {
			patch.Notes = notes
		}
		e, err := a.events.Update(ctx, actor, *id, patch)
		if err != nil {
			return err
		}
		printJSON(e)
	case "delete":
		fs := flag.NewFlagSet("event delete", flag.ExitOnError)
		id := fs.String("id", "", "event id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := a.events.Delete(ctx, actor, *id); err != nil {
			return err
		}
		fmt.Println("event deleted")
	case "list":
		fs := flag.NewFlagSet("event list", flag.ExitOnError)
		contractID := fs.String("contract-id", "", "filter by contract")
		clientID := fs.String("client-id", "", "filter by client")
		supportID := fs.String("support-id", "", "filter by assigned support")
		unassigned := fs.Bool("unassigned", false, "only events without support")
		upcoming := fs.Bool("upcoming", false, "only events ending in the future")
		past := fs.Bool("past", false, "only events already over")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		events, err := a.events.List(ctx, actor, store.EventFilter{
			ContractID: *contractID,
			ClientID:   *clientID,
			SupportID:  *supportID,
			Unassigned: *unassigned,
			Upcoming:   *upcoming,
			Past:       *past,
		})
		if err != nil {
			return err
		}
		printJSON(events)
	case "assign-support":
		fs := flag.NewFlagSet("event assign-support", flag.ExitOnError)
		id := fs.String("id", "", "event id")
		supportID := fs.String("support-id", "", "support user id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		e, err := a.events.AssignSupport(ctx, actor, *id, *supportID)
		if err != nil {
			return err
		}
		printJSON(e)
	case "unassign-support":
		fs := flag.NewFlagSet("event unassign-support", flag.ExitOnError)
		id := fs.String("id", "", "event id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		e, err := a.events.UnassignSupport(ctx, actor, *id)
		if err != nil {
			return err
		}
		printJSON(e)
	default:
		return errors.New(eventUsage)
	}
	return nil
}
