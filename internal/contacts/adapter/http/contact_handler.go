package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"contacts-api/internal/contacts/domain/model"
	"contacts-api/internal/contacts/usecase"
	apperrors "contacts-api/internal/shared/errors"
	"contacts-api/internal/shared/logger"
	"contacts-api/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Internal Server Error"

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreatedResponse is returned by POST /contacts
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// MessageResponse is returned by DELETE /contacts/:id
type MessageResponse struct {
	Message string `json:"message"`
}

// ContactHandler exposes contact CRUD over HTTP
type ContactHandler struct {
	contacts usecase.ContactUsecaseInterface
	log      logger.Logger
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(uc usecase.ContactUsecaseInterface, log logger.Logger) *ContactHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &ContactHandler{contacts: uc, log: log.WithComponent("contact-handler")}
}

// RegisterRoutes mounts the contact routes. Static segments under /contacts
// must be registered before this so they are not captured by /:id.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	contacts := router.Group("/contacts")
	contacts.Get("/", h.ListContacts)
	contacts.Post("/", h.CreateContact)
	contacts.Get("/events", h.ListContactEvents)
	contacts.Get("/:id", h.GetContact)
	contacts.Put("/:id", h.UpdateContact)
	contacts.Delete("/:id", h.DeleteContact)
}

// ListContacts handles GET /contacts
func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	contacts, err := h.contacts.List(requestContext(c, "contacts.list"), c.Query("filter"))
	if err != nil {
		return h.respondError(c, err)
	}
	if contacts == nil {
		contacts = []*model.Contact{}
	}
	return c.JSON(contacts)
}

// GetContact handles GET /contacts/:id
func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	id, err := parseContactID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	contact, err := h.contacts.Get(requestContext(c, "contacts.get"), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(contact)
}

// CreateContact handles POST /contacts
func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	input, err := parseContactInput(c)
	if err != nil {
		return h.respondError(c, err)
	}

	id, err := h.contacts.Create(requestContext(c, "contacts.create"), input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(CreatedResponse{ID: id})
}

// UpdateContact handles PUT /contacts/:id. Identifier fields in the body are ignored.
func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := parseContactID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	input, err := parseContactInput(c)
	if err != nil {
		return h.respondError(c, err)
	}

	contact, err := h.contacts.Update(requestContext(c, "contacts.update"), id, input)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(contact)
}

// DeleteContact handles DELETE /contacts/:id
func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := parseContactID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.contacts.Delete(requestContext(c, "contacts.delete"), id); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Contact deleted"})
}

// ListContactEvents handles GET /contacts/events?after=&limit=
func (h *ContactHandler) ListContactEvents(c *fiber.Ctx) error {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			return h.respondError(c, apperrors.NewValidationError("Invalid limit"))
		}
		limit = parsed
	}

	events, err := h.contacts.ListEvents(requestContext(c, "contacts.events"), c.Query("after"), limit)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(events)
}

// respondError writes err as {error}. Internal failures are logged and
// reported with a generic message.
func (h *ContactHandler) respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		}).Errorf("Request failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: internalErrorMessage})
	}

	message := err.Error()
	if appErr, ok := apperrors.AsAppError(err); ok {
		message = appErr.Message
	}
	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// requestContext tags the request context so usecase logs carry the operation
func requestContext(c *fiber.Ctx, operation string) context.Context {
	ctx := utils.WithComponent(c.UserContext(), "contacts-http")
	return utils.WithOperation(ctx, operation)
}

// parseContactID accepts unsigned decimal digits only
func parseContactID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	if !isDigits(raw) {
		return 0, apperrors.NewValidationError("Invalid contact id").WithCause(model.ErrInvalidID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewValidationError("Invalid contact id").WithCause(model.ErrInvalidID)
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseContactInput(c *fiber.Ctx) (model.ContactInput, error) {
	var input model.ContactInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return input, apperrors.NewValidationError("Invalid request body").WithCause(err)
	}
	return input, nil
}
