package permissions

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
	"eventcrm/internal/store"
)

type fixture struct {
	st         *store.Store
	eval       *Evaluator
	admin      *models.User
	gestion    *models.User
	commA      *models.User
	commB      *models.User
	support    *models.User
	supportB   *models.User
	client     *models.Client // owned by commA
	contract   *models.Contract
	event      *models.Event // assigned to support
	unassigned *models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	st := store.New(db, zap.NewNop().Sugar())
	if err := st.AutoMigrate(); err != nil {
		t.Fatal(err)
	}
	f := &fixture{st: st, eval: NewEvaluator(audit.Nop{})}
	mk := func(name string, role models.Role) *models.User {
		u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", FirstName: "F", LastName: "L", Role: role}
		if err := st.CreateUser(u); err != nil {
			t.Fatal(err)
		}
		return u
	}
	f.admin = mk("admin", models.RoleAdmin)
	f.gestion = mk("gestion", models.RoleGestion)
	f.commA = mk("comm-a", models.RoleCommercial)
	f.commB = mk("comm-b", models.RoleCommercial)
	f.support = mk("support", models.RoleSupport)
	f.supportB = mk("support-b", models.RoleSupport)

	f.client = &models.Client{FirstName: "C", LastName: "L", Email: "client@example.com", CommercialID: f.commA.ID}
	if err := st.CreateClient(f.client); err != nil {
		t.Fatal(err)
	}
	f.contract = &models.Contract{Name: "n", ClientID: f.client.ID, CommercialID: f.commA.ID, TotalAmount: 100, RemainingAmount: 100, Signed: true}
	if err := st.CreateContract(f.contract); err != nil {
		t.Fatal(err)
	}
	f.event = &models.Event{Name: "e", ContractID: f.contract.ID, ClientID: f.client.ID, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Location: "Lyon", SupportID: &f.support.ID}
	if err := st.CreateEvent(f.event); err != nil {
		t.Fatal(err)
	}
	f.unassigned = &models.Event{Name: "u", ContractID: f.contract.ID, ClientID: f.client.ID, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour), Location: "Nice"}
	if err := st.CreateEvent(f.unassigned); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) authorize(actor *models.User, action Action, target Target) error {
	return f.eval.Authorize(context.Background(), f.st, actor, action, target)
}

func isDenied(err error) bool {
	var pd *models.PermissionDeniedError
	return errors.As(err, &pd)
}

func TestPolicyMatrix(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name   string
		actor  *models.User
		action Action
		target Target
		allow  bool
	}{
		{"admin deletes user", f.admin, ActionDelete, Target{Kind: models.KindUser, ID: f.supportB.ID}, true},
		{"admin deletes contract", f.admin, ActionDelete, Target{Kind: models.KindContract, ID: f.contract.ID}, true},
		{"gestion creates user", f.gestion, ActionCreate, Target{Kind: models.KindUser}, true},
		{"gestion creates contract", f.gestion, ActionCreate, Target{Kind: models.KindContract}, true},
		{"gestion marks signed", f.gestion, ActionMarkSigned, Target{Kind: models.KindContract, ID: f.contract.ID}, true},
		{"gestion assigns support", f.gestion, ActionAssignSupport, Target{Kind: models.KindEvent, ID: f.event.ID}, true},
		{"gestion cannot update client", f.gestion, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}, false},
		{"gestion cannot delete contract", f.gestion, ActionDelete, Target{Kind: models.KindContract, ID: f.contract.ID}, false},
		{"commercial creates client", f.commA, ActionCreate, Target{Kind: models.KindClient}, true},
		{"commercial cannot create user", f.commA, ActionCreate, Target{Kind: models.KindUser}, false},
		{"commercial cannot mark signed", f.commA, ActionMarkSigned, Target{Kind: models.KindContract, ID: f.contract.ID}, false},
		{"commercial cannot assign support", f.commA, ActionAssignSupport, Target{Kind: models.KindEvent, ID: f.event.ID}, false},
		{"support reads contract", f.support, ActionRead, Target{Kind: models.KindContract, ID: f.contract.ID}, true},
		{"support cannot create event", f.support, ActionCreate, Target{Kind: models.KindEvent}, false},
		{"support cannot update client", f.support, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.authorize(tc.actor, tc.action, tc.target)
			if tc.allow && err != nil {
				t.Fatalf("want allowed, got %v", err)
			}
			if !tc.allow && !isDenied(err) {
				t.Fatalf("want denied, got %v", err)
			}
		})
	}
}

func TestOwnershipClient(t *testing.T) {
	f := newFixture(t)
	if err := f.authorize(f.commA, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}); err != nil {
		t.Fatalf("owner update denied: %v", err)
	}
	if err := f.authorize(f.commB, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}); !isDenied(err) {
		t.Fatalf("non-owner update allowed: %v", err)
	}
	if err := f.authorize(f.commB, ActionDelete, Target{Kind: models.KindClient, ID: f.client.ID}); !isDenied(err) {
		t.Fatalf("non-owner delete allowed: %v", err)
	}
}

func TestOwnershipContract(t *testing.T) {
	f := newFixture(t)
	if err := f.authorize(f.commA, ActionUpdate, Target{Kind: models.KindContract, ID: f.contract.ID}); err != nil {
		t.Fatalf("owning commercial denied: %v", err)
	}
	if err := f.authorize(f.commB, ActionUpdate, Target{Kind: models.KindContract, ID: f.contract.ID}); !isDenied(err) {
		t.Fatalf("other commercial allowed: %v", err)
	}
}

func TestOwnershipEvent(t *testing.T) {
	f := newFixture(t)
	if err := f.authorize(f.support, ActionUpdate, Target{Kind: models.KindEvent, ID: f.event.ID}); err != nil {
		t.Fatalf("assigned support denied: %v", err)
	}
	if err := f.authorize(f.supportB, ActionUpdate, Target{Kind: models.KindEvent, ID: f.event.ID}); !isDenied(err) {
		t.Fatalf("other support allowed: %v", err)
	}
	if err := f.authorize(f.support, ActionUpdate, Target{Kind: models.KindEvent, ID: f.unassigned.ID}); !isDenied(err) {
		t.Fatalf("support allowed on unassigned event: %v", err)
	}
}

// Ownership is re-resolved on every call, so reassigning a client flips
// the decision without any cache to invalidate.
func TestOwnershipFollowsReassignment(t *testing.T) {
	f := newFixture(t)
	if _, err := f.st.ReassignClients(f.commA.ID, f.commB.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.authorize(f.commB, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}); err != nil {
		t.Fatalf("new owner denied after reassignment: %v", err)
	}
	if err := f.authorize(f.commA, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID}); !isDenied(err) {
		t.Fatalf("old owner still allowed after reassignment: %v", err)
	}
}

func TestDeniedErrorCarriesContext(t *testing.T) {
	f := newFixture(t)
	err := f.authorize(f.commB, ActionUpdate, Target{Kind: models.KindClient, ID: f.client.ID})
	var pd *models.PermissionDeniedError
	if !errors.As(err, &pd) {
		t.Fatalf("want PermissionDeniedError, got %v", err)
	}
	if pd.Action != string(ActionUpdate) || pd.EntityKind != models.KindClient || pd.EntityID != f.client.ID {
		t.Fatalf("denied error missing context: %+v", pd)
	}
}

func TestLookupUnknownRowsDeny(t *testing.T) {
	if Lookup("intern", models.KindClient, ActionRead) != Deny {
		t.Fatal("unknown role must deny")
	}
	if Lookup(models.RoleSupport, "invoice", ActionRead) != Deny {
		t.Fatal("unknown kind must deny")
	}
	if Lookup(models.RoleSupport, models.KindEvent, ActionMarkPaid) != Deny {
		t.Fatal("unknown action must deny")
	}
}
