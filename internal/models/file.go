package models

import "time"

// FileInfo is the metadata document returned to the editor for a file.
// Field names follow the hosting protocol and must not change.
type FileInfo struct {
	BaseFileName               string `json:"BaseFileName"`
	OwnerId                    string `json:"OwnerId"`
	Size                       int64  `json:"Size"`
	UserId                     string `json:"UserId"`
	Version                    string `json:"Version"`
	UserCanWrite               bool   `json:"UserCanWrite"`
	SupportsUpdate             bool   `json:"SupportsUpdate"`
	SupportsLocks              bool   `json:"SupportsLocks"`
	SupportsGetLock            bool   `json:"SupportsGetLock"`
	SupportsExtendedLockLength bool   `json:"SupportsExtendedLockLength"`
	SupportsRename             bool   `json:"SupportsRename"`
	SupportsDeleteFile         bool   `json:"SupportsDeleteFile"`
	UserFriendlyName           string `json:"UserFriendlyName"`
	LastModifiedTime           string `json:"LastModifiedTime"`
}

// RecentFile is one row of the frontend recent-files listing.
type RecentFile struct {
	FileID     string    `json:"fileId"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// EditSession is the frontend API response for open and create flows.
type EditSession struct {
	EditorURL   string `json:"editorUrl"`
	FileID      string `json:"fileId"`
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
