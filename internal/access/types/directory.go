package types

// DirectoryEntry is one badge's identity as mirrored from the remote
// directory. Authorized is derived from the remote permission level at
// fetch time; the cache never re-derives it.
type DirectoryEntry struct {
	BadgeID    string `json:"badge_id"`
	Name       string `json:"name"`
	Authorized bool   `json:"authorized"`
}
