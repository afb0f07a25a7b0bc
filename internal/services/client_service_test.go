package services

import (
	"errors"
	"testing"

	"eventcrm/internal/models"
	"eventcrm/internal/store"
)

func TestClientCreateDefaultsToActingCommercial(t *testing.T) {
	e := newEnv(t)
	c := e.mkClient(t, "c@example.com", e.commA)
	if c.CommercialID != e.commA.ID {
		t.Fatalf("want owner %s, got %s", e.commA.ID, c.CommercialID)
	}
}

func TestClientCreateRejectsNonCommercialOwner(t *testing.T) {
	e := newEnv(t)
	_, err := e.clients.Create(e.ctx, e.admin, CreateClientInput{
		FirstName: "C", LastName: "L", Email: "c@example.com", CommercialID: e.support.ID,
	})
	if !isInvalidAssignee(err) {
		t.Fatalf("support accepted as client owner: %v", err)
	}
}

func TestClientUpdateOwnershipScenario(t *testing.T) {
	e := newEnv(t)
	c := e.mkClient(t, "c@example.com", e.commA)

	phone := "0600000000"
	if _, err := e.clients.Update(e.ctx, e.commB, c.ID, ClientPatch{Phone: &phone}); !isPermissionDenied(err) {
		t.Fatalf("commercial B allowed on A's client: %v", err)
	}
	got, err := e.clients.Update(e.ctx, e.commA, c.ID, ClientPatch{Phone: &phone})
	if err != nil {
		t.Fatalf("owner update denied: %v", err)
	}
	if got.Phone != phone {
		t.Fatal("phone not updated")
	}
}

func TestClientDeleteCascades(t *testing.T) {
	e := newEnv(t)
	c := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkSignedContract(t, c, 1000)
	ev := e.mkEvent(t, contract)

	if err := e.clients.Delete(e.ctx, e.commA, c.ID); err != nil {
		t.Fatal(err)
	}
	var nf *models.NotFoundError
	if _, err := e.contracts.Get(e.ctx, e.gestion, contract.ID); !errors.As(err, &nf) {
		t.Fatalf("contract survived client delete: %v", err)
	}
	if _, err := e.events.Get(e.ctx, e.gestion, ev.ID); !errors.As(err, &nf) {
		t.Fatalf("event survived client delete: %v", err)
	}
}

func TestClientDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	e.mkClient(t, "same@example.com", e.commA)
	_, err := e.clients.Create(e.ctx, e.commB, CreateClientInput{
		FirstName: "C", LastName: "L", Email: "same@example.com",
	})
	var dup *models.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Field != "email" {
		t.Fatalf("want duplicate email error, got %v", err)
	}
}

func TestClientListScopedForCommercial(t *testing.T) {
	e := newEnv(t)
	e.mkClient(t, "a@example.com", e.commA)
	e.mkClient(t, "b@example.com", e.commB)

	got, err := e.clients.List(e.ctx, e.commA, store.ClientFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CommercialID != e.commA.ID {
		t.Fatalf("commercial sees %d clients, want only their own", len(got))
	}

	got, err = e.clients.List(e.ctx, e.gestion, store.ClientFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("gestion sees %d clients, want 2", len(got))
	}
}
