package entity

import "time"

// MembershipRole of a user inside a workspace
type MembershipRole string

const (
	RoleOwner  MembershipRole = "owner"
	RoleEditor MembershipRole = "editor"
	RoleViewer MembershipRole = "viewer"
)

// Workspace owns conversations, agents and templates
type Workspace struct {
	ID        string
	Name      string
	Slug      string
	OwnerID   string
	CreatedAt time.Time
}

// Membership grants a user access to a workspace
type Membership struct {
	WorkspaceID string
	UserID      string
	Role        MembershipRole
}

// Agent is an assistant persona available in a workspace
type Agent struct {
	ID            string
	WorkspaceID   string
	Slug          string
	DisplayName   string
	PersonaPrompt string
	ConfigJSON    map[string]any
	IsSystem      bool
	CreatedAt     time.Time
}
