package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arzan03/DocBridge/internal/httperr"
)

// discoveryTimeout bounds the outbound call so a slow editor cannot stall
// the service.
const discoveryTimeout = 10 * time.Second

// DiscoveryHandler proxies the editor's capability descriptor. The payload
// is opaque to the bridge.
type DiscoveryHandler struct {
	EditorBaseURL string
	Log           *zap.Logger
	Client        *http.Client
}

// NewDiscoveryHandler builds the proxy with a bounded-timeout client.
func NewDiscoveryHandler(editorBaseURL string, log *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		EditorBaseURL: editorBaseURL,
		Log:           log,
		Client:        &http.Client{Timeout: discoveryTimeout},
	}
}

// Proxy relays GET /hosting/discovery from the editor.
func (h *DiscoveryHandler) Proxy(c *fiber.Ctx) error {
	resp, err := h.Client.Get(h.EditorBaseURL + "/hosting/discovery")
	if err != nil {
		h.Log.Warn("editor discovery unreachable", zap.Error(err))
		return httperr.Respond(c, httperr.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.Log.Warn("editor discovery returned error", zap.Int("status", resp.StatusCode))
		return httperr.Respond(c, httperr.ErrUpstream)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return httperr.Respond(c, httperr.ErrUpstream)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "" {
		c.Set(fiber.HeaderContentType, ct)
	}
	return c.Send(body)
}
