package services

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/types"
)

// NotificationEnqueuer is the slice of asynq.Client the service needs; faked in tests
type NotificationEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ContactListService owns the single-document contact list of each user.
//
// Every mutation is read-modify-write over the whole document: read the
// current list, change it in memory, write the full list back. There is no
// compare-and-swap and no transaction, so two concurrent mutations can both
// read the same prior state and the second write silently overwrites the
// first (last-write-wins at document granularity). This mirrors the store's
// contract and is covered by tests; do not "fix" it here without changing
// the wire contract too.
type ContactListService struct {
	contactsRepo repository.Repository
	userService  *UserService
	enqueuer     NotificationEnqueuer
	env          *types.Environment
}

func NewContactListService(dbSelector *repository.CouchDBSelector, env *types.Environment) *ContactListService {
	contactsRepo, err := dbSelector.ChooseDB(repository.Contacts)
	if err != nil {
		panic(err)
	}
	var enqueuer NotificationEnqueuer
	if env != nil && env.TaskClient != nil {
		enqueuer = env.TaskClient
	}
	return &ContactListService{
		contactsRepo: contactsRepo,
		userService:  NewUserService(dbSelector, env),
		enqueuer:     enqueuer,
		env:          env,
	}
}

// SetEnqueuer overrides the notification enqueuer (wired after the asynq client exists)
func (s *ContactListService) SetEnqueuer(e NotificationEnqueuer) {
	s.enqueuer = e
}

// GetByOwner returns the contact list document of the given owner.
// A missing document is types.ErrNotFound, distinct from an existing
// document with zero entries.
func (s *ContactListService) GetByOwner(ctx context.Context, owner string) (*types.ContactList, error) {
	response, err := s.contactsRepo.Find(ctx, map[string]interface{}{
		"ownerAddress": owner,
	}, 1, 0)
	if err != nil {
		return nil, err
	}
	var lists []types.ContactList
	if mErr := repository.MapFindToList(response, &lists); mErr != nil {
		return nil, mErr
	}
	if len(lists) == 0 {
		return nil, types.ErrNotFound
	}
	return &lists[0], nil
}

// GetByID returns the contact list document by its document id
func (s *ContactListService) GetByID(ctx context.Context, docID string) (*types.ContactList, error) {
	response, err := s.contactsRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	var list types.ContactList
	if mErr := repository.MapToObject(response, &list); mErr != nil {
		return nil, mErr
	}
	if list.UnderscoreID != "" && list.ID == "" {
		list.ID = list.UnderscoreID
	}
	return &list, nil
}

// stamp fills the server-side fields of a new entry
func stampEntry(input *types.InputContactEntry) types.ContactEntry {
	return types.ContactEntry{
		EntryID:  uuid.NewString(),
		Name:     input.Name,
		Surname:  input.Surname,
		Phone:    input.Phone,
		HowWeMet: input.HowWeMet,
		Created:  time.Now().UTC().UnixMilli(),
	}
}

// SaveContact appends an entry to the owner's list, creating the document on
// first save. When notify is set, a notification email task is enqueued
// best-effort after a successful persist: a dispatch failure never rolls back
// the append and is reported through the emailSent return value.
func (s *ContactListService) SaveContact(ctx context.Context, owner string, input *types.InputContactEntry, notify bool) (*types.ContactList, bool, error) {
	list, err := s.GetByOwner(ctx, owner)
	if err != nil {
		if err != types.ErrNotFound {
			return nil, false, err
		}
		// first save for this owner creates the document
		list = &types.ContactList{
			BaseDocument: types.BaseDocument{ID: uuid.NewString()},
			OwnerAddress: owner,
			Entries:      []types.ContactEntry{},
		}
	}
	docID := list.ID
	if docID == "" {
		docID = list.UnderscoreID
	}

	entry := stampEntry(input)
	list.Entries = append(list.Entries, entry)

	if sErr := s.contactsRepo.Save(ctx, docID, list); sErr != nil {
		return nil, false, sErr
	}
	list.ID = docID

	emailSent := false
	if notify {
		emailSent = s.enqueueNotification(owner, &entry)
	}
	return list, emailSent, nil
}

func (s *ContactListService) enqueueNotification(owner string, entry *types.ContactEntry) bool {
	if s.enqueuer == nil {
		return false
	}
	user, uErr := s.userService.Get(context.Background(), owner)
	if uErr != nil {
		level.Warn(global.Logger).Log("msg", "owner lookup failed, notification skipped", "owner", owner, "error", uErr.Error())
		return false
	}
	task, tErr := types.NewEmailNotificationTask(&types.EmailNotificationTask{
		OwnerAddress: owner,
		OwnerEmail:   user.Email,
		Entry:        entry,
	})
	if tErr != nil {
		level.Error(global.Logger).Log("msg", "failed to create notification task", "error", tErr.Error())
		return false
	}
	if _, qErr := s.enqueuer.Enqueue(task, asynq.MaxRetry(3)); qErr != nil {
		level.Error(global.Logger).Log("msg", "failed to enqueue notification", "owner", owner, "error", qErr.Error())
		return false
	}
	return true
}

// AddEntry appends an entry through the explicit update endpoint. Unlike
// SaveContact the document must already exist and no notification is sent.
func (s *ContactListService) AddEntry(ctx context.Context, docID string, input *types.InputContactEntry) (*types.ContactList, error) {
	list, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	entry := stampEntry(input)
	list.Entries = append(list.Entries, entry)

	if sErr := s.contactsRepo.Save(ctx, docID, list); sErr != nil {
		return nil, sErr
	}
	return list, nil
}

// DeleteEntry removes exactly one entry at the zero-based index; entries after
// it shift left by one. Bounds violations leave the stored list unmodified.
func (s *ContactListService) DeleteEntry(ctx context.Context, docID string, index int) (int, error) {
	list, err := s.GetByID(ctx, docID)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(list.Entries) {
		return 0, types.ErrIndexOutOfRange
	}
	list.Entries = append(list.Entries[:index], list.Entries[index+1:]...)

	if sErr := s.contactsRepo.Save(ctx, docID, list); sErr != nil {
		return 0, sErr
	}
	return len(list.Entries), nil
}

// DeleteList removes the whole contact list document
func (s *ContactListService) DeleteList(ctx context.Context, docID string) error {
	return s.contactsRepo.Delete(ctx, docID)
}
