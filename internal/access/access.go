// Package access computes effective permissions for (user, document) pairs.
// It is pure: callers resolve the collaboration grant and pass it in.
package access

import "inkwell/internal/models"

// Level is an effective permission. None is below every grantable level.
type Level string

const (
	None  Level = "none"
	Read  Level = "read"
	Write Level = "write"
	Admin Level = "admin"
)

var rank = map[Level]int{None: 0, Read: 1, Write: 2, Admin: 3}

// AtLeast reports whether l meets the minimum level min.
func AtLeast(l, min Level) bool {
	return rank[l] >= rank[min]
}

// FromPermission converts a stored grant level to an effective level.
func FromPermission(p models.PermissionLevel) Level {
	switch p {
	case models.PermissionRead:
		return Read
	case models.PermissionWrite:
		return Write
	case models.PermissionAdmin:
		return Admin
	default:
		return None
	}
}

// Effective resolves the permission of userID on doc. The owner is always
// admin. Otherwise the unique collaboration grant decides; absent a grant, a
// public document still yields read for any authenticated user.
func Effective(doc *models.Document, userID string, grant *models.Collaboration) Level {
	if doc == nil || userID == "" {
		return None
	}
	if doc.OwnerID == userID {
		return Admin
	}
	if grant != nil && grant.DocumentID == doc.ID && grant.UserID == userID {
		return FromPermission(grant.PermissionLevel)
	}
	if doc.Privacy == models.PrivacyPublic {
		return Read
	}
	return None
}

// CanView reports whether the level allows reading the document and its
// versions.
func CanView(l Level) bool { return AtLeast(l, Read) }

// CanEdit reports whether the level allows mutating content: creating
// versions, AI edits, and title/type/metadata updates.
func CanEdit(l Level) bool { return AtLeast(l, Write) }

// IsOwner reports whether userID owns doc. Deletion, sharing, and privacy
// changes are owner-only: an admin-level collaborator holds elevated editing
// rights, not ownership.
func IsOwner(doc *models.Document, userID string) bool {
	return doc != nil && userID != "" && doc.OwnerID == userID
}
