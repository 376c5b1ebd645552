package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arzan03/DocBridge/internal/auth"
	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/services"
)

// APIHandler serves the frontend flows that hand the browser an editor URL.
type APIHandler struct {
	Auth *auth.Manager
	Docs *services.DocumentService
	Log  *zap.Logger
}

type editRequest struct {
	Path   string `json:"path"`
	NodeID string `json:"nodeId"`
}

type createRequest struct {
	Type   string `json:"type"`
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

// user verifies the identity provider's bearer credential.
func (h *APIHandler) user(c *fiber.Ctx) (auth.UserClaims, error) {
	return h.Auth.VerifyUserToken(c.Get(fiber.HeaderAuthorization))
}

// Edit opens an existing document for editing.
func (h *APIHandler) Edit(c *fiber.Ctx) error {
	user, err := h.user(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: malformed request body", httperr.ErrValidation))
	}
	target := req.Path
	if target == "" {
		target = req.NodeID
	}
	sess, err := h.Docs.OpenSession(user, target)
	if err != nil {
		return httperr.Respond(c, err)
	}
	h.Log.Info("edit session issued",
		zap.String("user", user.Subject), zap.String("fileId", sess.FileID))
	return c.JSON(sess)
}

// Create materializes a new empty document and opens it.
func (h *APIHandler) Create(c *fiber.Ctx) error {
	user, err := h.user(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Respond(c, fmt.Errorf("%w: malformed request body", httperr.ErrValidation))
	}
	sess, err := h.Docs.CreateDocument(c.Context(), user, req.Type, req.Folder, req.Name)
	if err != nil {
		return httperr.Respond(c, err)
	}
	h.Log.Info("document created",
		zap.String("user", user.Subject), zap.String("fileId", sess.FileID))
	return c.JSON(sess)
}

// Recent lists recently touched documents.
func (h *APIHandler) Recent(c *fiber.Ctx) error {
	user, err := h.user(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	files, err := h.Docs.RecentFiles(c.Context(), user)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"files": files})
}
