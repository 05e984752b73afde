// Package authz decides whether a requester may act on an organization or account.
//
// Decisions are split in two steps. A Checker resolves Facts about the requester from
// storage for a given Scope; a Predicate then decides on those facts with no I/O.
// Handlers must build the Scope only once every identifier it needs is known, including
// identifiers that come from the request body or from a previously loaded row.
package authz

import (
	"context"

	apperrors "greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/models"
)

// Action is the class of operation being authorized.
type Action int

const (
	ActionRead Action = iota
	ActionList
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionList:
		return "list"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IsSafe reports whether the action does not mutate anything.
func (a Action) IsSafe() bool {
	return a == ActionRead || a == ActionList
}

// Scope identifies the resource being acted on. UserID is the subject the resource
// belongs to, when there is one: the account owner, the user named in a membership
// request, or the member being removed.
type Scope struct {
	OrganizationID string
	UserID         string
}

// Facts are what the predicates know about the requester for one scope.
type Facts struct {
	RequesterID string
	Member      bool
	Admin       bool
}

// Predicate decides an action on resolved facts. It must not perform I/O.
type Predicate func(f Facts, s Scope, a Action) bool

func isSubject(f Facts, s Scope) bool {
	return f.RequesterID != "" && s.UserID != "" && s.UserID == f.RequesterID
}

func IsOrganizationMember(f Facts, s Scope, a Action) bool {
	return f.Member
}

func IsOrganizationAdmin(f Facts, s Scope, a Action) bool {
	return f.Member && f.Admin
}

// IsOrganizationAdminOrReadOnly lets members read and list; everything else needs admin.
func IsOrganizationAdminOrReadOnly(f Facts, s Scope, a Action) bool {
	if a.IsSafe() {
		return f.Member
	}
	return IsOrganizationAdmin(f, s, a)
}

// IsOrganizationAdminOrPostOnly lets admins do anything. Anyone else may only create,
// and only on their own behalf: the scope subject must be the requester.
func IsOrganizationAdminOrPostOnly(f Facts, s Scope, a Action) bool {
	if IsOrganizationAdmin(f, s, a) {
		return true
	}
	return a == ActionCreate && isSubject(f, s)
}

// IsOrganizationAdminOrDeleteOnly lets admins do anything. Anyone else may only delete
// a resource whose subject is themselves.
func IsOrganizationAdminOrDeleteOnly(f Facts, s Scope, a Action) bool {
	if IsOrganizationAdmin(f, s, a) {
		return true
	}
	return a == ActionDelete && isSubject(f, s)
}

func OwnsAccount(f Facts, s Scope, a Action) bool {
	return isSubject(f, s)
}

// MembershipSource looks up a user's membership. It returns nil, nil for non-members.
type MembershipSource interface {
	GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error)
}

type Checker struct {
	members MembershipSource
}

func NewChecker(members MembershipSource) *Checker {
	return &Checker{members: members}
}

// Resolve gathers the facts needed by predicates. Membership is only looked up for
// organization scopes.
func (c *Checker) Resolve(ctx context.Context, requesterID string, s Scope) (Facts, error) {
	f := Facts{RequesterID: requesterID}
	if s.OrganizationID == "" || requesterID == "" {
		return f, nil
	}

	m, err := c.members.GetMembership(ctx, s.OrganizationID, requesterID)
	if err != nil {
		return f, err
	}
	if m != nil {
		f.Member = true
		f.Admin = m.IsAdmin()
	}
	return f, nil
}

// Authorize resolves facts and evaluates p. A denial is an authorization error; a failed
// lookup is an internal error.
func (c *Checker) Authorize(ctx context.Context, requesterID string, s Scope, a Action, p Predicate) error {
	f, err := c.Resolve(ctx, requesterID, s)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !p(f, s, a) {
		return apperrors.Forbidden("You do not have permission to " + a.String() + " this resource")
	}
	return nil
}
