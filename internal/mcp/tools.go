package mcp

import (
	"context"
	"encoding/json"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

type ProposalIDParams struct {
	ID int64 `json:"id" jsonschema:"Numeric proposal id"`
}

type SharedProposalParams struct {
	ShareToken string `json:"share_token" jsonschema:"Share token from a proposal link"`
}

type ListUpdatesParams struct {
	ProposalID int64 `json:"proposal_id" jsonschema:"Numeric proposal id"`
	Limit      int   `json:"limit,omitempty" jsonschema:"Maximum number of updates, newest first (default 50)"`
}

type DraftProposalParams struct {
	Fields proposal.Fields `json:"fields" jsonschema:"Proposal form content"`
}

// SharedProposalResponse pairs a proposal with its roster.
type SharedProposalResponse struct {
	Proposal      *proposal.Proposal          `json:"proposal"`
	Collaborators []collaborator.Collaborator `json:"collaborators"`
}

// DraftResponse carries generated proposal text.
type DraftResponse struct {
	GeneratedProposal string `json:"generatedProposal"`
}

func registerTools(server *sdkmcp.Server, services Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_proposal",
		Description: "Get a grant proposal by id, including any generated draft",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProposalIDParams) (*sdkmcp.CallToolResult, any, error) {
		p, err := services.Proposals.Get(ctx, in.ID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(p)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_shared_proposal",
		Description: "Resolve a share token to its proposal and current collaborator roster",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in SharedProposalParams) (*sdkmcp.CallToolResult, any, error) {
		p, err := services.Proposals.GetByShareToken(ctx, strings.TrimSpace(in.ShareToken))
		if err != nil {
			return errorResult(err), nil, nil
		}
		roster, err := services.Roster.List(ctx, p.ID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(SharedProposalResponse{Proposal: p, Collaborators: roster})
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_collaborators",
		Description: "List everyone who has joined a proposal, in join order",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProposalIDParams) (*sdkmcp.CallToolResult, any, error) {
		if _, err := services.Proposals.Get(ctx, in.ID); err != nil {
			return errorResult(err), nil, nil
		}
		roster, err := services.Roster.List(ctx, in.ID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(roster)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_updates",
		Description: "List recent field edits on a proposal, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListUpdatesParams) (*sdkmcp.CallToolResult, any, error) {
		limit := in.Limit
		if limit <= 0 {
			limit = history.DefaultLimit
		}
		updates, err := services.Updates.Recent(ctx, in.ProposalID, limit)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(updates)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_proposal",
		Description: "Generate the narrative for a stored proposal and save it; falls back to an offline draft when the AI service is unavailable",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProposalIDParams) (*sdkmcp.CallToolResult, any, error) {
		p, err := services.Proposals.Generate(ctx, in.ID)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(p)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "draft_proposal",
		Description: "Generate proposal text for unsaved form content without storing anything",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in DraftProposalParams) (*sdkmcp.CallToolResult, any, error) {
		text, err := services.Proposals.Draft(ctx, in.Fields)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(DraftResponse{GeneratedProposal: text})
	})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	data, marshalErr := json.Marshal(apiErr)
	if marshalErr != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
