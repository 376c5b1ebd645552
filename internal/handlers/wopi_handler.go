package handlers

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arzan03/DocBridge/internal/auth"
	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/lock"
	"github.com/arzan03/DocBridge/internal/logging"
	"github.com/arzan03/DocBridge/internal/models"
	"github.com/arzan03/DocBridge/internal/secure"
	"github.com/arzan03/DocBridge/internal/session"
	"github.com/arzan03/DocBridge/internal/storage"
)

// Override is the closed set of protocol operations selected by the
// X-WOPI-Override header. Anything else is a validation error.
type Override string

const (
	OpLock            Override = "LOCK"
	OpGetLock         Override = "GET_LOCK"
	OpRefreshLock     Override = "REFRESH_LOCK"
	OpUnlock          Override = "UNLOCK"
	OpUnlockAndRelock Override = "UNLOCK_AND_RELOCK"
	OpPutRelative     Override = "PUT_RELATIVE"
	OpRenameFile      Override = "RENAME_FILE"
	OpDelete          Override = "DELETE"
)

// maxLockTokenLength matches SupportsExtendedLockLength.
const maxLockTokenLength = 1024

// WOPIHandler is the single dispatch point for protocol requests on a file.
type WOPIHandler struct {
	Auth          *auth.Manager
	Locks         *lock.Manager
	Store         *storage.Adapter
	Log           *zap.Logger
	PublicBaseURL string
}

// Register mounts the protocol routes on the files group.
func (h *WOPIHandler) Register(files fiber.Router) {
	files.Get("/:id", h.CheckFileInfo)
	files.Get("/:id/contents", h.GetContents)
	files.Post("/:id/contents", h.PutContents)
	files.Post("/:id", h.HandleOperation)
}

// authorize decodes the route's file id and validates the access token
// against it, returning the live session and the storage path.
func (h *WOPIHandler) authorize(c *fiber.Ctx) (*session.Session, string, string, error) {
	fileID := c.Params("id")
	node, err := secure.DecodeFileID(fileID)
	if err != nil {
		return nil, "", "", err
	}
	token := c.Query("access_token")
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	sess, err := h.Auth.Validate(token, fileID)
	if err != nil {
		h.Log.Debug("token rejected",
			zap.String("fileId", fileID), zap.String("token", logging.Mask(token)))
		return nil, "", "", err
	}
	return sess, fileID, node, nil
}

// CheckFileInfo returns the metadata document for the file.
func (h *WOPIHandler) CheckFileInfo(c *fiber.Ctx) error {
	sess, _, node, err := h.authorize(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	meta, err := h.Store.Metadata(c.Context(), sess.StorageCredential, node)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(models.FileInfo{
		BaseFileName:               path.Base(node),
		OwnerId:                    sess.UserID,
		Size:                       meta.Size,
		UserId:                     sess.UserID,
		Version:                    meta.Version,
		UserCanWrite:               true,
		SupportsUpdate:             true,
		SupportsLocks:              true,
		SupportsGetLock:            true,
		SupportsExtendedLockLength: true,
		SupportsRename:             true,
		SupportsDeleteFile:         true,
		UserFriendlyName:           sess.DisplayName,
		LastModifiedTime:           meta.ModifiedAt.UTC().Format(time.RFC3339),
	})
}

// GetContents streams the current content bytes; a not-yet-written new file
// yields an empty body.
func (h *WOPIHandler) GetContents(c *fiber.Ctx) error {
	sess, _, node, err := h.authorize(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	data, err := h.Store.Download(c.Context(), sess.StorageCredential, node)
	if err != nil {
		return httperr.Respond(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/octet-stream")
	return c.Send(data)
}

// PutContents accepts new content bytes after checking the presented lock
// against the current holder.
func (h *WOPIHandler) PutContents(c *fiber.Ctx) error {
	sess, fileID, node, err := h.authorize(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	lockToken, err := lockHeader(c, "X-WOPI-Lock")
	if err != nil {
		return httperr.Respond(c, err)
	}
	if err := h.Locks.Check(fileID, lockToken); err != nil {
		return httperr.Respond(c, err)
	}
	res, err := h.Store.Upload(c.Context(), sess.StorageCredential, node, c.Body(), storage.MimeForName(node))
	if err != nil {
		return httperr.Respond(c, err)
	}
	c.Set("X-WOPI-ItemVersion", res.Version)
	return c.JSON(fiber.Map{"ItemVersion": res.Version})
}

// HandleOperation dispatches the lock and file-management operations.
func (h *WOPIHandler) HandleOperation(c *fiber.Ctx) error {
	sess, fileID, node, err := h.authorize(c)
	if err != nil {
		return httperr.Respond(c, err)
	}
	lockToken, err := lockHeader(c, "X-WOPI-Lock")
	if err != nil {
		return httperr.Respond(c, err)
	}
	oldLockToken, err := lockHeader(c, "X-WOPI-OldLock")
	if err != nil {
		return httperr.Respond(c, err)
	}

	switch Override(c.Get("X-WOPI-Override")) {
	case OpLock:
		if err := h.Locks.Lock(fileID, lockToken); err != nil {
			return httperr.Respond(c, err)
		}
		return okWithLock(c, lockToken)
	case OpGetLock:
		return okWithLock(c, h.Locks.Get(fileID))
	case OpRefreshLock:
		if err := h.Locks.Refresh(fileID, lockToken); err != nil {
			return httperr.Respond(c, err)
		}
		return okWithLock(c, lockToken)
	case OpUnlock:
		if err := h.Locks.Unlock(fileID, lockToken); err != nil {
			return httperr.Respond(c, err)
		}
		return okWithLock(c, "")
	case OpUnlockAndRelock:
		if err := h.Locks.UnlockAndRelock(fileID, oldLockToken, lockToken); err != nil {
			return httperr.Respond(c, err)
		}
		return okWithLock(c, lockToken)
	case OpPutRelative:
		return h.putRelative(c, sess, node)
	case OpRenameFile:
		return h.renameFile(c, sess, fileID, node, lockToken)
	case OpDelete:
		return h.deleteFile(c, sess, fileID, node, lockToken)
	default:
		return httperr.Respond(c, fmt.Errorf("%w: unrecognized operation %q",
			httperr.ErrValidation, c.Get("X-WOPI-Override")))
	}
}

// putRelative creates a sibling file from the request body and hands back a
// protocol URL with a fresh access token scoped to it.
func (h *WOPIHandler) putRelative(c *fiber.Ctx, sess *session.Session, node string) error {
	name := relativeName(c, node)
	if name == "" {
		name = "document" + path.Ext(node)
	}
	newNode := path.Join(path.Dir(node), name)
	newFileID := secure.EncodeFileID(newNode)

	if _, err := h.Store.Upload(c.Context(), sess.StorageCredential, newNode, c.Body(), storage.MimeForName(name)); err != nil {
		return httperr.Respond(c, err)
	}
	token, _, err := h.Auth.Issue(sess.UserID, sess.DisplayName, newFileID, newNode, sess.StorageCredential)
	if err != nil {
		return httperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{
		"Name": name,
		"Url":  h.PublicBaseURL + "/files/" + newFileID + "?access_token=" + url.QueryEscape(token),
	})
}

func (h *WOPIHandler) renameFile(c *fiber.Ctx, sess *session.Session, fileID, node, lockToken string) error {
	if err := h.Locks.Check(fileID, lockToken); err != nil {
		return httperr.Respond(c, err)
	}
	requested := secure.SanitizeFilename(c.Get("X-WOPI-RequestedName"))
	if requested == "" {
		return httperr.Respond(c, fmt.Errorf("%w: requested name is unusable", httperr.ErrValidation))
	}
	if path.Ext(requested) == "" {
		requested += path.Ext(node)
	}
	newNode, err := h.Store.Rename(c.Context(), sess.StorageCredential, node, requested)
	if err != nil {
		return httperr.Respond(c, err)
	}
	// The routing key derives from the path, so the lock record moves with it.
	h.Locks.Move(fileID, secure.EncodeFileID(newNode))
	return c.JSON(fiber.Map{"Name": requested})
}

func (h *WOPIHandler) deleteFile(c *fiber.Ctx, sess *session.Session, fileID, node, lockToken string) error {
	if err := h.Locks.Check(fileID, lockToken); err != nil {
		return httperr.Respond(c, err)
	}
	// The lock record goes only once storage confirms: a failed delete must
	// leave the holder's lock intact.
	if err := h.Store.Delete(c.Context(), sess.StorageCredential, node); err != nil {
		return httperr.Respond(c, err)
	}
	if err := h.Locks.Release(fileID, lockToken); err != nil {
		return httperr.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// relativeName resolves the PUT_RELATIVE target headers: an exact relative
// target wins; a suggested target starting with "." swaps the extension.
func relativeName(c *fiber.Ctx, node string) string {
	if relative := c.Get("X-WOPI-RelativeTarget"); relative != "" {
		return secure.SanitizeFilename(relative)
	}
	suggested := c.Get("X-WOPI-SuggestedTarget")
	if suggested == "" {
		return ""
	}
	if strings.HasPrefix(suggested, ".") {
		base := strings.TrimSuffix(path.Base(node), path.Ext(node))
		return secure.SanitizeFilename(base + suggested)
	}
	return secure.SanitizeFilename(suggested)
}

func lockHeader(c *fiber.Ctx, header string) (string, error) {
	value := c.Get(header)
	if len(value) > maxLockTokenLength {
		return "", fmt.Errorf("%w: %s header too long", httperr.ErrValidation, header)
	}
	return value, nil
}

func okWithLock(c *fiber.Ctx, token string) error {
	c.Set("X-WOPI-Lock", token)
	return c.SendStatus(fiber.StatusOK)
}
