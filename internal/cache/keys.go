package cache

import (
	"fmt"
	"strconv"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
)

// Class selects the TTL a key is stored with
type Class int

const (
	// ClassShort holds per-user and aggregate data that changes often
	ClassShort Class = iota
	// ClassCatalog holds near-static catalogue listings
	ClassCatalog
	// ClassDetail holds single-entity documents
	ClassDetail
)

// Target is anything Invalidate can remove: a Key or a Prefix
type Target interface {
	target() string
}

// Key is a cache key together with its TTL class
type Key struct {
	name  string
	class Class
}

func (k Key) String() string { return k.name }

func (k Key) Class() Class { return k.class }

func (k Key) target() string { return k.name }

// Prefix removes every key that starts with it
type Prefix string

func (p Prefix) target() string { return string(p) }

// UserWorkspaces is the list of workspaces a user belongs to
func UserWorkspaces(userID uuid.UUID) Key {
	return Key{"workspaces:" + userID.String(), ClassShort}
}

// AdminWorkspaces is the list of workspaces a user owns
func AdminWorkspaces(userID uuid.UUID) Key {
	return Key{"admin:workspaces:" + userID.String(), ClassShort}
}

// UserRoles is every role assignment a user holds
func UserRoles(userID uuid.UUID) Key {
	return Key{"user:" + userID.String() + ":roles", ClassShort}
}

// Workspace is a workspace detail document
func Workspace(workspaceID uuid.UUID) Key {
	return Key{"workspace:" + workspaceID.String(), ClassDetail}
}

// WorkspaceScope covers every key nested under a workspace
func WorkspaceScope(workspaceID uuid.UUID) Prefix {
	return Prefix("workspace:" + workspaceID.String() + ":")
}

// WorkspaceMembers is the member list of a workspace
func WorkspaceMembers(workspaceID uuid.UUID) Key {
	return Key{"workspace:" + workspaceID.String() + ":members", ClassShort}
}

// WorkspaceCategories is the category list of a workspace
func WorkspaceCategories(workspaceID uuid.UUID) Key {
	return Key{"workspace:" + workspaceID.String() + ":categories", ClassShort}
}

// WorkspaceDashboard is the aggregate dashboard of a workspace
func WorkspaceDashboard(workspaceID uuid.UUID) Key {
	return Key{"workspace:" + workspaceID.String() + ":dashboard", ClassShort}
}

// WorkspaceProductsPage is one page of a workspace catalogue
func WorkspaceProductsPage(workspaceID uuid.UUID, page, pageSize int) Key {
	return Key{fmt.Sprintf("workspace:%s:products:%d:%d", workspaceID, page, pageSize), ClassCatalog}
}

// WorkspaceProducts covers every catalogue page of a workspace
func WorkspaceProducts(workspaceID uuid.UUID) Prefix {
	return Prefix("workspace:" + workspaceID.String() + ":products:")
}

// ProductSlug is a product looked up by its slug
func ProductSlug(workspaceID uuid.UUID, slug string) Key {
	return Key{"workspace:" + workspaceID.String() + ":product:slug:" + slug, ClassDetail}
}

// Product is a product detail document
func Product(productID uuid.UUID) Key {
	return Key{"product:" + productID.String(), ClassDetail}
}

// ProductVariants is the variant list of a product
func ProductVariants(productID uuid.UUID) Key {
	return Key{"product:variants:" + productID.String(), ClassCatalog}
}

// ProductStats is the catalogue summary of a workspace
func ProductStats(workspaceID uuid.UUID) Key {
	return Key{"product:stats:" + workspaceID.String(), ClassCatalog}
}

// Notifications is one filtered page of a user's notifications
func Notifications(userID uuid.UUID, q domain.NotificationQuery) Key {
	typ := "all"
	if q.Type != nil {
		typ = string(*q.Type)
	}
	read := "all"
	if q.IsRead != nil {
		read = strconv.FormatBool(*q.IsRead)
	}
	return Key{fmt.Sprintf("notifications:%s:%d:%d:%s:%s", userID, q.Limit, q.Offset, typ, read), ClassShort}
}

// UnreadNotifications is a user's unread count, optionally for one workspace
func UnreadNotifications(userID uuid.UUID, workspaceID *uuid.UUID) Key {
	scope := "all"
	if workspaceID != nil {
		scope = workspaceID.String()
	}
	return Key{"notifications:" + userID.String() + ":unread:" + scope, ClassShort}
}

// UserNotifications covers every notification key of a user
func UserNotifications(userID uuid.UUID) Prefix {
	return Prefix("notifications:" + userID.String() + ":")
}
