package dto

import (
	"github.com/chazo1994/Creatory/internal/domain/entity"
)

// CreateWorkspaceRequest is the body of POST /workspaces
type CreateWorkspaceRequest struct {
	Name string  `json:"name"`
	Slug *string `json:"slug"`
}

// WorkspaceResponse 工作区响应（HTTP）
type WorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
}

// ToWorkspaceResponse converts entity.Workspace to WorkspaceResponse DTO
func ToWorkspaceResponse(ws *entity.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		OwnerID:   ws.OwnerID,
		CreatedAt: formatTime(ws.CreatedAt),
	}
}

// ToWorkspaceList converts workspaces in order
func ToWorkspaceList(list []*entity.Workspace) []*WorkspaceResponse {
	out := make([]*WorkspaceResponse, len(list))
	for i, ws := range list {
		out[i] = ToWorkspaceResponse(ws)
	}
	return out
}
