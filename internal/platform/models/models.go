package models

import "encoding/json"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Organization struct {
	ID        string `json:"uuid"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Membership links a User to an Organization. Role is RoleAdmin or RoleMember.
type Membership struct {
	OrganizationID string `json:"organization_uuid"`
	UserID         string `json:"user_uuid"`
	Role           string `json:"role"`
	JoinedAt       int64  `json:"joined_at"`
}

func (m *Membership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}

type User struct {
	ID           string `json:"uuid"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

// Member is a User as seen through one organization's membership set.
type Member struct {
	ID        string `json:"uuid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	JoinedAt  int64  `json:"joined_at"`
}

type Contact struct {
	ID                     string  `json:"uuid"`
	OrganizationID         string  `json:"organization_uuid"`
	CreatedBy              *string `json:"created_by,omitempty"`
	FirstName              string  `json:"first_name"`
	LastName               string  `json:"last_name"`
	RankID                 *string `json:"rank_uuid,omitempty"`
	PrimaryContactMethodID *string `json:"primary_contact_method_uuid,omitempty"`
	CreatedAt              int64   `json:"created_at"`
	UpdatedAt              int64   `json:"updated_at"`

	ContactMethods []*ContactMethod `json:"contact_methods,omitempty"`
	Notes          []*ContactNote   `json:"notes,omitempty"`
}

type ContactMethod struct {
	ID        string `json:"uuid"`
	ContactID string `json:"contact_uuid"`
	Medium    string `json:"medium"`
	Value     string `json:"value"`
	CreatedAt int64  `json:"created_at"`
}

type ContactRank struct {
	ID             string `json:"uuid"`
	OrganizationID string `json:"organization_uuid"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

type ContactNote struct {
	ID        string  `json:"uuid"`
	ContactID string  `json:"contact_uuid"`
	CreatedBy *string `json:"created_by,omitempty"`
	Body      string  `json:"body"`
	CreatedAt int64   `json:"created_at"`
}

type MembershipRequest struct {
	ID             string `json:"uuid"`
	OrganizationID string `json:"organization_uuid"`
	UserID         string `json:"user_uuid"`
	CreatedAt      int64  `json:"created_at"`
}

const (
	NotificationVerificationSent  = "verification_sent"
	NotificationRequestAccepted   = "membership_request_accepted"
	NotificationRequestRejected   = "membership_request_rejected"
	NotificationMembershipRemoved = "membership_removed"
)

type Notification struct {
	ID        string          `json:"uuid"`
	UserID    string          `json:"user_uuid"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

type AuditLog struct {
	ID             string                 `json:"uuid"`
	OrganizationID string                 `json:"organization_uuid"`
	UserID         string                 `json:"user_uuid"`
	Action         string                 `json:"action"`
	ResourceType   string                 `json:"resource_type"`
	ResourceID     string                 `json:"resource_uuid"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	IPAddress      string                 `json:"ip_address"`
	UserAgent      string                 `json:"user_agent"`
	CreatedAt      int64                  `json:"created_at"`
}
