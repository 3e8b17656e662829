package services

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

type fakeEnqueuer struct {
	fail     bool
	enqueued []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.fail {
		return nil, errors.New("broker unreachable")
	}
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

func newContactListService(t *testing.T) (*mockCouch, *ContactListService) {
	t.Helper()
	mc, selector := newMockCouch(t, repository.Users, repository.Contacts)
	return mc, NewContactListService(selector, nil)
}

func entryInput(name, phone string) *types.InputContactEntry {
	return &types.InputContactEntry{Name: name, Phone: phone}
}

func TestSaveContactCreatesListOnFirstSave(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	list, _, err := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEmpty(t, list.ID)
	assert.Equal(t, "owner-1", list.OwnerAddress)
	assert.Len(t, list.Entries, 1)
	assert.Equal(t, "Ada", list.Entries[0].Name)
	assert.NotEmpty(t, list.Entries[0].EntryID)
	assert.NotZero(t, list.Entries[0].Created)

	stored, err := svc.GetByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, list.ID, stored.ID)
	assert.Len(t, stored.Entries, 1)
}

func TestSaveContactAppendsInOrder(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	svc.SaveContact(ctx, "owner-1", entryInput("Grace", "+222"), false)
	// duplicates are allowed, positional identity only
	svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)

	stored, err := svc.GetByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, stored.Entries, 3)
	assert.Equal(t, "Ada", stored.Entries[0].Name)
	assert.Equal(t, "Grace", stored.Entries[1].Name)
	assert.Equal(t, "Ada", stored.Entries[2].Name)
	assert.NotEqual(t, stored.Entries[0].EntryID, stored.Entries[2].EntryID)
}

func TestDeleteEntryByIndex(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	list, _, _ := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	svc.SaveContact(ctx, "owner-1", entryInput("Grace", "+222"), false)
	svc.SaveContact(ctx, "owner-1", entryInput("Edsger", "+333"), false)

	remaining, err := svc.DeleteEntry(ctx, list.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, remaining)

	stored, _ := svc.GetByOwner(ctx, "owner-1")
	assert.Len(t, stored.Entries, 2)
	assert.Equal(t, "Ada", stored.Entries[0].Name)
	assert.Equal(t, "Edsger", stored.Entries[1].Name)
}

func TestDeleteEntryOutOfRangeLeavesListUntouched(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	list, _, _ := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	svc.SaveContact(ctx, "owner-1", entryInput("Grace", "+222"), false)

	for _, index := range []int{-1, 2, 100} {
		_, err := svc.DeleteEntry(ctx, list.ID, index)
		assert.Equal(t, types.ErrIndexOutOfRange, err)
	}

	stored, _ := svc.GetByOwner(ctx, "owner-1")
	assert.Len(t, stored.Entries, 2)
	assert.Equal(t, "Ada", stored.Entries[0].Name)
	assert.Equal(t, "Grace", stored.Entries[1].Name)
}

func TestGetByOwnerNotFoundDistinctFromEmpty(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	_, err := svc.GetByOwner(ctx, "nobody")
	assert.Equal(t, types.ErrNotFound, err)

	list, _, _ := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	_, err = svc.DeleteEntry(ctx, list.ID, 0)
	if err != nil {
		t.Fatal(err)
	}

	// the emptied document still exists and is not a not-found
	stored, err := svc.GetByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, stored.Entries, 0)
}

func TestDeleteListRemovesDocument(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	list, _, _ := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	if err := svc.DeleteList(ctx, list.ID); err != nil {
		t.Fatal(err)
	}
	_, err := svc.GetByOwner(ctx, "owner-1")
	assert.Equal(t, types.ErrNotFound, err)
}

// Two writers that read the same prior state overwrite each other: the write
// path refreshes the revision right before the put, so the slower writer
// silently replaces the faster one's append.
func TestConcurrentAppendLastWriteWins(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	list, _, err := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), false)
	if err != nil {
		t.Fatal(err)
	}

	// slow writer reads the list now
	stale, err := svc.GetByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}

	// fast writer appends and lands first
	svc.SaveContact(ctx, "owner-1", entryInput("Grace", "+222"), false)

	// slow writer appends to its stale copy and writes the whole document back
	stale.Entries = append(stale.Entries, types.ContactEntry{EntryID: "stale", Name: "Edsger", Phone: "+333"})
	if sErr := svc.contactsRepo.Save(ctx, list.ID, stale); sErr != nil {
		t.Fatal(sErr)
	}

	stored, _ := svc.GetByOwner(ctx, "owner-1")
	assert.Len(t, stored.Entries, 2)
	assert.Equal(t, "Ada", stored.Entries[0].Name)
	// Grace is gone, Edsger won
	assert.Equal(t, "Edsger", stored.Entries[1].Name)
}

func TestSaveContactReportsEmailOutcome(t *testing.T) {
	mc, svc := newContactListService(t)
	ctx := context.Background()

	mc.putDoc(repository.Users, "owner-1", map[string]interface{}{
		"name":  "Owner",
		"email": "owner@example.com",
	})

	// broker down: the append still persists, emailSent is false
	failing := &fakeEnqueuer{fail: true}
	svc.SetEnqueuer(failing)
	list, emailSent, err := svc.SaveContact(ctx, "owner-1", entryInput("Ada", "+111"), true)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, emailSent)
	assert.Len(t, list.Entries, 1)

	stored, _ := svc.GetByOwner(ctx, "owner-1")
	assert.Len(t, stored.Entries, 1)

	// broker healthy: task enqueued with the owner's email
	working := &fakeEnqueuer{}
	svc.SetEnqueuer(working)
	_, emailSent, err = svc.SaveContact(ctx, "owner-1", entryInput("Grace", "+222"), true)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, emailSent)
	assert.Len(t, working.enqueued, 1)
	assert.Equal(t, types.QueueTypeEmailNotification, working.enqueued[0].Type())
}

func TestSaveContactUnknownOwnerSkipsNotification(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	working := &fakeEnqueuer{}
	svc.SetEnqueuer(working)

	// no user document for the owner: contact saves, notification is skipped
	_, emailSent, err := svc.SaveContact(ctx, "ghost-owner", entryInput("Ada", "+111"), true)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, emailSent)
	assert.Empty(t, working.enqueued)
}

func TestAddEntryRequiresExistingDocument(t *testing.T) {
	_, svc := newContactListService(t)
	ctx := context.Background()

	_, err := svc.AddEntry(ctx, "missing-doc", entryInput("Ada", "+111"))
	assert.Equal(t, types.ErrNotFound, err)
}
