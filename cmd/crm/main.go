package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"eventcrm/internal/audit"
	"eventcrm/internal/auth"
	"eventcrm/internal/config"
	"eventcrm/internal/logger"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/services"
	"eventcrm/internal/store"
)

const usage = `usage: crm <command> [flags]

commands:
  login | logout | whoami | init-admin
  user     create | update | delete | list | reassign
  client   create | update | delete | list
  contract create | update | delete | list | sign | pay | record-payment
  event    create | update | delete | list | assign-support | unassign-support
`

type app struct {
	cfg       config.Config
	lg        *zap.SugaredLogger
	st        *store.Store
	sessions  *auth.Sessions
	users     *services.UserService
	clients   *services.ClientService
	contracts *services.ContractService
	events    *services.EventService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	st := store.New(db, lg)
	if err := st.AutoMigrate(); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	sink := audit.NewRecorder(db, lg)
	authz := permissions.NewEvaluator(sink)
	a := &app{
		cfg:       cfg,
		lg:        lg,
		st:        st,
		sessions:  auth.NewSessions(cfg.SessionFile, cfg.SessionSecret, cfg.SessionTTL),
		users:     services.NewUserService(st, authz, sink, lg),
		clients:   services.NewClientService(st, authz, sink, lg),
		contracts: services.NewContractService(st, authz, sink, lg),
		events:    services.NewEventService(st, authz, sink, lg),
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "login":
		err = a.runLogin(os.Args[2:])
	case "logout":
		err = a.sessions.Logout()
	case "whoami":
		err = a.runWhoami()
	case "init-admin":
		err = a.runInitAdmin(os.Args[2:])
	case "user":
		err = a.runUser(ctx, os.Args[2:])
	case "client":
		err = a.runClient(ctx, os.Args[2:])
	case "contract":
		err = a.runContract(ctx, os.Args[2:])
	case "event":
		err = a.runEvent(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// actor resolves the logged-in user for the current invocation.
func (a *app) actor() (*models.User, error) {
	return a.sessions.CurrentUser(a.st)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
