package services

import (
	"testing"

	"eventcrm/internal/store"
)

func TestContractCreateSnapshotsCommercial(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 5000)

	if contract.CommercialID != e.commA.ID {
		t.Fatalf("want commercial snapshot %s, got %s", e.commA.ID, contract.CommercialID)
	}
	if contract.RemainingAmount != contract.TotalAmount {
		t.Fatalf("remaining amount must default to total")
	}

	// Reassigning the client must not rewrite history on the contract.
	if _, err := e.users.Reassign(e.ctx, e.gestion, e.commA.ID, e.commB.ID); err != nil {
		t.Fatal(err)
	}
	got, err := e.contracts.Get(e.ctx, e.gestion, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CommercialID != e.commA.ID {
		t.Fatalf("commercial snapshot changed after client reassignment")
	}
}

func TestContractCreateRejectsNegativeAmount(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	_, err := e.contracts.Create(e.ctx, e.gestion, CreateContractInput{
		Name: "bad", ClientID: client.ID, TotalAmount: -1,
	})
	if !isValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestMarkPaidBeforeSignedFails(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 5000)

	if _, err := e.contracts.MarkPaid(e.ctx, e.gestion, contract.ID); !isInvalidTransition(err) {
		t.Fatalf("want invalid transition, got %v", err)
	}
}

func TestSignThenPayReachesPaid(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 5000)

	c, err := e.contracts.MarkSigned(e.ctx, e.gestion, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Signed {
		t.Fatal("contract not signed")
	}
	c, err = e.contracts.MarkPaid(e.ctx, e.gestion, contract.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Paid || !c.Signed {
		t.Fatalf("want signed and paid, got signed=%v paid=%v", c.Signed, c.Paid)
	}
}

func TestMarkSignedIdempotent(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkSignedContract(t, client, 5000)

	c, err := e.contracts.MarkSigned(e.ctx, e.gestion, contract.ID)
	if err != nil {
		t.Fatalf("re-sign must be a no-op, got %v", err)
	}
	if !c.Signed {
		t.Fatal("contract lost signed state")
	}
}

func TestCommercialCannotMarkSigned(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 5000)

	if _, err := e.contracts.MarkSigned(e.ctx, e.commA, contract.ID); !isPermissionDenied(err) {
		t.Fatalf("owning commercial must not record signatures, got %v", err)
	}
}

func TestCommercialUpdatesOwnContractsOnly(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 5000)

	name := "renamed"
	if _, err := e.contracts.Update(e.ctx, e.commA, contract.ID, ContractPatch{Name: &name}); err != nil {
		t.Fatalf("owner update denied: %v", err)
	}
	if _, err := e.contracts.Update(e.ctx, e.commB, contract.ID, ContractPatch{Name: &name}); !isPermissionDenied(err) {
		t.Fatalf("non-owner update allowed: %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	e := newEnv(t)
	client := e.mkClient(t, "c@example.com", e.commA)
	contract := e.mkContract(t, client, 1000)

	if _, err := e.contracts.RecordPayment(e.ctx, e.gestion, contract.ID, 400); !isInvalidTransition(err) {
		t.Fatalf("payment on unsigned contract must fail, got %v", err)
	}

	contract = e.mkSignedContract(t, client, 1000)
	if _, err := e.contracts.RecordPayment(e.ctx, e.gestion, contract.ID, -5); !isValidation(err) {
		t.Fatal("negative payment accepted")
	}
	if _, err := e.contracts.RecordPayment(e.ctx, e.gestion, contract.ID, 2000); !isValidation(err) {
		t.Fatal("overpayment accepted")
	}

	c, err := e.contracts.RecordPayment(e.ctx, e.gestion, contract.ID, 400)
	if err != nil {
		t.Fatal(err)
	}
	if c.RemainingAmount != 600 || c.Paid {
		t.Fatalf("after partial payment: remaining=%v paid=%v", c.RemainingAmount, c.Paid)
	}
	c, err = e.contracts.RecordPayment(e.ctx, e.gestion, contract.ID, 600)
	if err != nil {
		t.Fatal(err)
	}
	if c.RemainingAmount != 0 || !c.Paid {
		t.Fatalf("after settling: remaining=%v paid=%v", c.RemainingAmount, c.Paid)
	}
}

func TestContractListScopedForCommercial(t *testing.T) {
	e := newEnv(t)
	clientA := e.mkClient(t, "a@example.com", e.commA)
	clientB := e.mkClient(t, "b@example.com", e.commB)
	e.mkContract(t, clientA, 100)
	e.mkContract(t, clientB, 200)

	got, err := e.contracts.List(e.ctx, e.commA, store.ContractFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CommercialID != e.commA.ID {
		t.Fatalf("commercial sees %d contracts, want only their own", len(got))
	}

	got, err = e.contracts.List(e.ctx, e.gestion, store.ContractFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("gestion sees %d contracts, want 2", len(got))
	}
}
