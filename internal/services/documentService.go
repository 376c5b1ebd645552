package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/arzan03/DocBridge/internal/auth"
	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/models"
	"github.com/arzan03/DocBridge/internal/secure"
	"github.com/arzan03/DocBridge/internal/storage"
)

// recentLimit caps the recent-files listing.
const recentLimit = 20

// defaultExtensions maps a requested document type to the extension of the
// empty file that gets materialized.
var defaultExtensions = map[string]string{
	"document":     ".odt",
	"spreadsheet":  ".ods",
	"presentation": ".odp",
}

// DocumentService composes auth and storage for the frontend flows: open an
// existing file, create a new one, list recent files.
type DocumentService struct {
	auth          *auth.Manager
	store         *storage.Adapter
	publicBaseURL string
	editorBaseURL string
}

// NewDocumentService wires the frontend service.
func NewDocumentService(authMgr *auth.Manager, store *storage.Adapter, publicBaseURL, editorBaseURL string) *DocumentService {
	return &DocumentService{
		auth:          authMgr,
		store:         store,
		publicBaseURL: publicBaseURL,
		editorBaseURL: editorBaseURL,
	}
}

// OpenSession issues a scoped access token for an existing storage path and
// returns the editor URL the browser should load.
func (s *DocumentService) OpenSession(user auth.UserClaims, rawPath string) (models.EditSession, error) {
	node, err := secure.NormalizeStoragePath(rawPath)
	if err != nil {
		return models.EditSession{}, err
	}
	return s.issueFor(user, node)
}

// CreateDocument materializes an empty document and issues a session for it.
// docType selects the default extension; name falls back to Untitled.
func (s *DocumentService) CreateDocument(ctx context.Context, user auth.UserClaims, docType, folder, name string) (models.EditSession, error) {
	ext, known := defaultExtensions[docType]
	if !known && docType != "" {
		return models.EditSession{}, fmt.Errorf("%w: unknown document type %q", httperr.ErrValidation, docType)
	}
	if ext == "" {
		ext = ".odt"
	}

	name = secure.SanitizeFilename(name)
	if name == "" {
		name = "Untitled" + ext
	} else if path.Ext(name) == "" {
		name += ext
	}

	if folder == "" {
		folder = "/"
	}
	node, err := secure.NormalizeStoragePath(path.Join("/", folder, name))
	if err != nil {
		return models.EditSession{}, err
	}

	if _, err := s.store.CreateEmpty(ctx, user.Drive, node, storage.MimeForName(name)); err != nil {
		return models.EditSession{}, err
	}
	return s.issueFor(user, node)
}

// RecentFiles lists recently touched documents with their routing keys.
func (s *DocumentService) RecentFiles(ctx context.Context, user auth.UserClaims) ([]models.RecentFile, error) {
	entries, err := s.store.Recent(ctx, user.Drive, recentLimit)
	if err != nil {
		return nil, err
	}
	recent := make([]models.RecentFile, 0, len(entries))
	for _, e := range entries {
		recent = append(recent, models.RecentFile{
			FileID:     secure.EncodeFileID(e.Path),
			Name:       e.Name,
			Path:       e.Path,
			Size:       e.Size,
			ModifiedAt: e.ModifiedAt,
		})
	}
	return recent, nil
}

func (s *DocumentService) issueFor(user auth.UserClaims, node string) (models.EditSession, error) {
	fileID := secure.EncodeFileID(node)
	token, _, err := s.auth.Issue(user.Subject, user.DisplayName, fileID, node, user.Drive)
	if err != nil {
		return models.EditSession{}, err
	}
	return models.EditSession{
		EditorURL:   s.editorURL(fileID, token),
		FileID:      fileID,
		AccessToken: token,
		ExpiresIn:   int64(s.auth.TTL().Seconds()),
	}, nil
}

// editorURL embeds the protocol source and access token the way the editor
// expects them.
func (s *DocumentService) editorURL(fileID, token string) string {
	src := s.publicBaseURL + "/files/" + fileID
	return strings.TrimRight(s.editorBaseURL, "/") +
		"/editor?WOPISrc=" + url.QueryEscape(src) +
		"&access_token=" + url.QueryEscape(token)
}
