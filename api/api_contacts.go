package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cardlink/go-cardlink-server/metrics"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

type ContactsApi struct {
	contactListService *services.ContactListService
	statisticsService  *services.StatisticsService
	validate           *validator.Validate
}

func NewContactsApi(contactListService *services.ContactListService, statisticsService *services.StatisticsService) *ContactsApi {
	return &ContactsApi{
		contactListService: contactListService,
		statisticsService:  statisticsService,
		validate:           validator.New(),
	}
}

// Save contact against a user's card (public, triggers notification email)
// @Summary Save contact against a user's card
// @Description Appends the contact to the owner's list, creating the list on first save, and emails the owner
// @Tags Contacts
// @Param input body types.InputSaveContact true "Contact to save"
// @Success 200 {object} types.OutputSaveContact
// @Failure 400 {object} api.ApiError "missing required fields"
// @Failure 500 {object} api.ApiError "store error"
// @Accept json
// @Produce json
// @Router /api/v1/saveContactInfo [post]
func (a *ContactsApi) SaveContactInfo(c *gin.Context) {
	var input types.InputSaveContact
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	list, emailSent, err := a.contactListService.SaveContact(c.Request.Context(), input.UserID, input.ContactInfo, true)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to save contact")
		return
	}
	metrics.ContactsSavedCount.Inc()
	a.statisticsService.IncrementSave(c.Request.Context(), input.UserID)

	message := "contact saved"
	if !emailSent {
		message = "contact saved, email notification failed"
	}
	c.JSON(http.StatusOK, types.OutputSaveContact{
		ID:        list.ID,
		Message:   message,
		EmailSent: emailSent,
	})
}

// Add a contact without the notification side effect
// @Security Bearer
// @Summary Add a contact to a user's list
// @Description Appends the contact to the owner's list, creating the list on first save
// @Tags Contacts
// @Param input body types.InputSaveContact true "Contact to add"
// @Success 201 {object} types.OutputContactAdded
// @Failure 400 {object} api.ApiError "missing required fields"
// @Failure 500 {object} api.ApiError "store error"
// @Accept json
// @Produce json
// @Router /api/v1/contacts [post]
func (a *ContactsApi) AddContact(c *gin.Context) {
	var input types.InputSaveContact
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	list, _, err := a.contactListService.SaveContact(c.Request.Context(), input.UserID, input.ContactInfo, false)
	if err != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to add contact")
		return
	}
	metrics.ContactsSavedCount.Inc()
	c.JSON(http.StatusCreated, types.OutputContactAdded{ID: list.ID})
}

// Get the contact list document
// @Security Bearer
// @Summary Get the contact list document
// @Description Returns the full entries list with document id and owner; an empty list is a valid document
// @Tags Contacts
// @Param id path string true "contact list document id"
// @Success 200 {object} types.ContactList
// @Failure 404 {object} api.ApiError "document not found"
// @Accept json
// @Produce json
// @Router /api/v1/contacts/{id} [get]
func (a *ContactsApi) GetContacts(c *gin.Context) {
	docID := c.Param("id")
	list, err := a.contactListService.GetByID(c.Request.Context(), docID)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "contact list not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to retrieve contact list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get the signed-in user's contact list
// @Security Bearer
// @Summary Get the signed-in user's contact list
// @Description Looks the list up by the session owner's address
// @Tags Contacts
// @Success 200 {object} types.ContactList
// @Failure 404 {object} api.ApiError "no list saved yet"
// @Accept json
// @Produce json
// @Router /api/v1/user/me/contacts [get]
func (a *ContactsApi) GetMyContacts(c *gin.Context) {
	address := c.GetString("subjectAddress")
	list, err := a.contactListService.GetByOwner(c.Request.Context(), address)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "contact list not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to retrieve contact list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Append a contact through the explicit update endpoint
// @Security Bearer
// @Summary Append a contact to an existing list
// @Description Same append semantics as saveContactInfo but the document must exist and no email is sent
// @Tags Contacts
// @Param id path string true "contact list document id"
// @Param input body types.InputContactUpdate true "Contact to append"
// @Success 200 {object} types.ContactList
// @Failure 400 {object} api.ApiError "missing body"
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 500 {object} api.ApiError "store error"
// @Accept json
// @Produce json
// @Router /api/v1/contacts/{id} [patch]
func (a *ContactsApi) UpdateContacts(c *gin.Context) {
	docID := c.Param("id")

	var input types.InputContactUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, ValidatorErrorToUser(err.(validator.ValidationErrors)))
		return
	}

	list, err := a.contactListService.AddEntry(c.Request.Context(), docID, input.ContactInfo)
	if err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "contact list not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to update contact list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Delete the whole contact list
// @Security Bearer
// @Summary Delete the whole contact list
// @Description Removes the contact list document
// @Tags Contacts
// @Param id path string true "contact list document id"
// @Success 200 {object} types.OutputDeletedDocument
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 500 {object} api.ApiError "store error"
// @Accept json
// @Produce json
// @Router /api/v1/contacts/{id} [delete]
func (a *ContactsApi) DeleteContacts(c *gin.Context) {
	docID := c.Param("id")
	if err := a.contactListService.DeleteList(c.Request.Context(), docID); err != nil {
		if err == types.ErrNotFound {
			ApiErrorf(c, http.StatusNotFound, "contact list not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to delete contact list")
		return
	}
	c.JSON(http.StatusOK, types.OutputDeletedDocument{ID: docID})
}

// Delete a single entry by its zero-based position
// @Security Bearer
// @Summary Delete a single contact entry by index
// @Description Removes exactly one entry at the position; later entries shift left by one
// @Tags Contacts
// @Param id path string true "contact list document id"
// @Param index path string true "zero-based entry index"
// @Success 200 {object} types.OutputEntryDeleted
// @Failure 400 {object} api.ApiError "non-integer or out-of-range index"
// @Failure 404 {object} api.ApiError "document not found"
// @Failure 500 {object} api.ApiError "store error"
// @Accept json
// @Produce json
// @Router /api/v1/contacts/{id}/contact/{index} [delete]
func (a *ContactsApi) DeleteContactByIndex(c *gin.Context) {
	docID := c.Param("id")

	// reject a non-integer index before touching the store
	index, convErr := strconv.Atoi(c.Param("index"))
	if convErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "index must be an integer")
		return
	}

	remaining, err := a.contactListService.DeleteEntry(c.Request.Context(), docID, index)
	if err != nil {
		switch err {
		case types.ErrIndexOutOfRange:
			ApiErrorf(c, http.StatusBadRequest, "index out of range")
		case types.ErrNotFound:
			ApiErrorf(c, http.StatusNotFound, "contact list not found")
		default:
			ApiErrorf(c, http.StatusInternalServerError, "failed to delete contact entry")
		}
		return
	}
	metrics.ContactsDeletedCount.Inc()
	c.JSON(http.StatusOK, types.OutputEntryDeleted{ID: docID, Remaining: remaining})
}
