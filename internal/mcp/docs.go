package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `grantmate hosts grant proposals that several people edit together in real time.

Core concepts:
- Proposal: the shared form (organization, project, mission, description, target population, amount, timeline, goals) plus an optional generated narrative.
- Share token: an unguessable string that lets anyone open a proposal.
- Collaborator: a roster entry for a registered user or a named guest, kept in join order.
- Update: an immutable record of one field edit, attributed to whoever made it.

Tools:
- get_proposal / get_shared_proposal: read a proposal by id or share token.
- list_collaborators / list_updates: who is working on it and what changed recently.
- generate_proposal: write and save the narrative for a stored proposal.
- draft_proposal: produce narrative text for unsaved form content.

Live editing happens over the WebSocket endpoint, not MCP. Read grantmate://docs/session-protocol before building a client.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "grantmate://docs/session-protocol",
		Name:        "session_protocol",
		Title:       "Live editing protocol",
		Description: "Message shapes and ordering rules for the /ws collaboration endpoint.",
		Content: `# Live editing protocol

Connect a WebSocket to ` + "`" + `/ws` + "`" + `. Every frame is a flat JSON object whose ` + "`" + `type` + "`" + ` member names the message.

## Client to server

` + "`" + `join_proposal` + "`" + ` binds the connection to one proposal. Send it once, first.

    {"type":"join_proposal","proposalId":42,"guestName":"Alice"}

A user id wins over a guest name. Omitting both joins anonymously: you receive
broadcasts but are not added to the roster.

` + "`" + `field_update` + "`" + ` reports an edit to one form field. It is ignored before a join.

    {"type":"field_update","field":"mission","oldValue":"","newValue":"Feed every child"}

## Server to client

` + "`" + `collaborators_update` + "`" + ` answers a join with the full roster in join order.

` + "`" + `field_changed` + "`" + ` relays an edit to every other session on the same proposal:

    {"type":"field_changed","field":"mission","value":"Feed every child","updatedBy":"Alice"}

Registered users are attributed as "User <id>", guests by name, and anonymous
sessions as "Anonymous".

` + "`" + `collaborator_joined` + "`" + ` announces a collaborator added through the REST API.

## Rules

- Edits for one proposal are relayed in the order the server received them.
- The sender never receives its own ` + "`" + `field_changed` + "`" + `.
- Sessions on other proposals never see each other's traffic.
- Malformed frames are dropped without closing the connection.
- Closing the socket does not remove you from the roster.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
