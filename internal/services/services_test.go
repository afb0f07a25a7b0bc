package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"eventcrm/internal/audit"
	"eventcrm/internal/models"
	"eventcrm/internal/permissions"
	"eventcrm/internal/store"
)

type env struct {
	ctx       context.Context
	st        *store.Store
	users     *UserService
	clients   *ClientService
	contracts *ContractService
	events    *EventService

	admin   *models.User
	gestion *models.User
	commA   *models.User
	commB   *models.User
	support *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	lg := zap.NewNop().Sugar()
	st := store.New(db, lg)
	if err := st.AutoMigrate(); err != nil {
		t.Fatal(err)
	}
	sink := audit.Nop{}
	authz := permissions.NewEvaluator(sink)
	e := &env{
		ctx:       context.Background(),
		st:        st,
		users:     NewUserService(st, authz, sink, lg),
		clients:   NewClientService(st, authz, sink, lg),
		contracts: NewContractService(st, authz, sink, lg),
		events:    NewEventService(st, authz, sink, lg),
	}
	mk := func(name string, role models.Role) *models.User {
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", FirstName: "F", LastName: "L", Role: role}
		if err := st.CreateUser(u); err != nil {
			t.Fatal(err)
		}
		return u
	}
	e.admin = mk("admin", models.RoleAdmin)
	e.gestion = mk("gestion", models.RoleGestion)
	e.commA = mk("comm-a", models.RoleCommercial)
	e.commB = mk("comm-b", models.RoleCommercial)
	e.support = mk("support", models.RoleSupport)
	return e
}

func (e *env) mkClient(t *testing.T, email string, owner *models.User) *models.Client {
	t.Helper()
	c, err := e.clients.Create(e.ctx, owner, CreateClientInput{
		FirstName: "C", LastName: "L", Email: email,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (e *env) mkContract(t *testing.T, client *models.Client, amount float64) *models.Contract {
	t.Helper()
	c, err := e.contracts.Create(e.ctx, e.gestion, CreateContractInput{
		Name: "contract", ClientID: client.ID, TotalAmount: amount,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (e *env) mkSignedContract(t *testing.T, client *models.Client, amount float64) *models.Contract {
	t.Helper()
	c := e.mkContract(t, client, amount)
	c, err := e.contracts.MarkSigned(e.ctx, e.gestion, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (e *env) mkEvent(t *testing.T, contract *models.Contract) *models.Event {
	t.Helper()
	ev, err := e.events.Create(e.ctx, e.gestion, CreateEventInput{
		Name:       "event",
		ContractID: contract.ID,
		StartDate:  time.Now().Add(24 * time.Hour),
		EndDate:    time.Now().Add(30 * time.Hour),
		Location:   "Paris",
		Attendees:  50,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ev
}

func isPermissionDenied(err error) bool {
	var pd *models.PermissionDeniedError
	return errors.As(err, &pd)
}

func isInvalidTransition(err error) bool {
	var it *models.InvalidTransitionError
	return errors.As(err, &it)
}

func isInvalidAssignee(err error) bool {
	var ia *models.InvalidAssigneeError
	return errors.As(err, &ia)
}

func isValidation(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}
