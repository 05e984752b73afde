package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "greekgeeks/internal/pkg/errors"
	"greekgeeks/internal/platform/models"
)

var allActions = []Action{ActionRead, ActionList, ActionCreate, ActionUpdate, ActionDelete}

var (
	outsider = Facts{RequesterID: "usr_out"}
	member   = Facts{RequesterID: "usr_mem", Member: true}
	admin    = Facts{RequesterID: "usr_adm", Member: true, Admin: true}
)

func allowed(p Predicate, f Facts, s Scope) map[Action]bool {
	out := make(map[Action]bool, len(allActions))
	for _, a := range allActions {
		out[a] = p(f, s, a)
	}
	return out
}

func TestPredicates(t *testing.T) {
	org := Scope{OrganizationID: "org_1"}
	all := map[Action]bool{ActionRead: true, ActionList: true, ActionCreate: true, ActionUpdate: true, ActionDelete: true}
	none := map[Action]bool{ActionRead: false, ActionList: false, ActionCreate: false, ActionUpdate: false, ActionDelete: false}

	tests := []struct {
		name  string
		pred  Predicate
		facts Facts
		scope Scope
		want  map[Action]bool
	}{
		{"member: member", IsOrganizationMember, member, org, all},
		{"member: outsider", IsOrganizationMember, outsider, org, none},

		{"admin: admin", IsOrganizationAdmin, admin, org, all},
		{"admin: member", IsOrganizationAdmin, member, org, none},
		{"admin: admin flag without membership", IsOrganizationAdmin, Facts{RequesterID: "x", Admin: true}, org, none},

		{"read-only: member", IsOrganizationAdminOrReadOnly, member, org,
			map[Action]bool{ActionRead: true, ActionList: true, ActionCreate: false, ActionUpdate: false, ActionDelete: false}},
		{"read-only: admin", IsOrganizationAdminOrReadOnly, admin, org, all},
		{"read-only: outsider", IsOrganizationAdminOrReadOnly, outsider, org, none},

		{"post-only: admin", IsOrganizationAdminOrPostOnly, admin, org, all},
		{"post-only: member for self", IsOrganizationAdminOrPostOnly, member, Scope{OrganizationID: "org_1", UserID: "usr_mem"},
			map[Action]bool{ActionRead: false, ActionList: false, ActionCreate: true, ActionUpdate: false, ActionDelete: false}},
		{"post-only: outsider for self", IsOrganizationAdminOrPostOnly, outsider, Scope{OrganizationID: "org_1", UserID: "usr_out"},
			map[Action]bool{ActionRead: false, ActionList: false, ActionCreate: true, ActionUpdate: false, ActionDelete: false}},
		{"post-only: member for someone else", IsOrganizationAdminOrPostOnly, member, Scope{OrganizationID: "org_1", UserID: "usr_other"}, none},
		{"post-only: subject unknown", IsOrganizationAdminOrPostOnly, member, org, none},

		{"delete-only: admin", IsOrganizationAdminOrDeleteOnly, admin, Scope{OrganizationID: "org_1", UserID: "usr_other"}, all},
		{"delete-only: own resource", IsOrganizationAdminOrDeleteOnly, member, Scope{OrganizationID: "org_1", UserID: "usr_mem"},
			map[Action]bool{ActionRead: false, ActionList: false, ActionCreate: false, ActionUpdate: false, ActionDelete: true}},
		{"delete-only: outsider own resource", IsOrganizationAdminOrDeleteOnly, outsider, Scope{OrganizationID: "org_1", UserID: "usr_out"},
			map[Action]bool{ActionRead: false, ActionList: false, ActionCreate: false, ActionUpdate: false, ActionDelete: true}},
		{"delete-only: someone else's resource", IsOrganizationAdminOrDeleteOnly, member, Scope{OrganizationID: "org_1", UserID: "usr_other"}, none},

		{"owns account: self", OwnsAccount, Facts{RequesterID: "usr_1"}, Scope{UserID: "usr_1"}, all},
		{"owns account: other", OwnsAccount, Facts{RequesterID: "usr_1"}, Scope{UserID: "usr_2"}, none},
		{"owns account: anonymous", OwnsAccount, Facts{}, Scope{}, none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allowed(tt.pred, tt.facts, tt.scope))
		})
	}
}

func TestChecker(t *testing.T) {
	members := fakeMembers{
		"org_1/usr_adm": {OrganizationID: "org_1", UserID: "usr_adm", Role: models.RoleAdmin},
		"org_1/usr_mem": {OrganizationID: "org_1", UserID: "usr_mem", Role: models.RoleMember},
	}
	c := NewChecker(members)
	ctx := context.Background()

	t.Run("resolves membership", func(t *testing.T) {
		f, err := c.Resolve(ctx, "usr_adm", Scope{OrganizationID: "org_1"})
		require.NoError(t, err)
		assert.Equal(t, Facts{RequesterID: "usr_adm", Member: true, Admin: true}, f)

		f, err = c.Resolve(ctx, "usr_mem", Scope{OrganizationID: "org_1"})
		require.NoError(t, err)
		assert.Equal(t, Facts{RequesterID: "usr_mem", Member: true}, f)

		f, err = c.Resolve(ctx, "usr_mem", Scope{OrganizationID: "org_2"})
		require.NoError(t, err)
		assert.False(t, f.Member)
	})

	t.Run("denial is forbidden", func(t *testing.T) {
		err := c.Authorize(ctx, "usr_mem", Scope{OrganizationID: "org_1"}, ActionCreate, IsOrganizationAdmin)
		assert.Equal(t, apperrors.KindAuthorization, apperrors.KindOf(err))
	})

	t.Run("allowed", func(t *testing.T) {
		assert.NoError(t, c.Authorize(ctx, "usr_adm", Scope{OrganizationID: "org_1"}, ActionCreate, IsOrganizationAdmin))
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		err := c.Authorize(ctx, "usr_mem", Scope{OrganizationID: "org_broken"}, ActionRead, IsOrganizationMember)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	})
}

// fakeMembers keys memberships by "orgID/userID".
type fakeMembers map[string]*models.Membership

func (f fakeMembers) GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	if orgID == "org_broken" {
		return nil, errors.New("database is locked")
	}
	return f[orgID+"/"+userID], nil
}
