// ABOUTME: MCP server assembly
// ABOUTME: Registers person tools, resources and prompts against a people.Store
package handlers

import (
	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadbook/people"
)

// NewServer builds the leadbook MCP server. Transport is left to the caller.
func NewServer(store people.Store, version string, logger *log.Logger) *mcp.Server {
	peopleHandlers := NewPeopleHandlers(store, logger)
	resourceHandlers := NewResourceHandlers(store)
	promptHandlers := NewPromptHandlers(store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "leadbook",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_person",
		Description: "Add a new prospect; profile images are copied into local storage",
	}, peopleHandlers.AddPerson)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_people",
		Description: "Search prospects by free text and optionally by pipeline status",
	}, peopleHandlers.FindPeople)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_person",
		Description: "Get a single prospect by id",
	}, peopleHandlers.GetPerson)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_person",
		Description: "Update only the given fields of a prospect",
	}, peopleHandlers.UpdatePerson)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_person",
		Description: "Delete a prospect and its stored profile image",
	}, peopleHandlers.DeletePerson)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bulk_update_people",
		Description: "Apply per-prospect changes in one call; each record succeeds or fails on its own",
	}, peopleHandlers.BulkUpdatePeople)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_status",
		Description: "Move a prospect to the next outreach stage, or to Cancelled",
	}, peopleHandlers.AdvanceStatus)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:         resourceScheme + "people",
		Name:        "people",
		Description: "Every prospect record",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         resourceScheme + "pipeline",
		Name:        "pipeline",
		Description: "Prospect counts per outreach stage plus engagement totals",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "people/{id}",
		Name:        "person",
		Description: "A single prospect record",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "prospect-summary",
		Description: "Briefing and suggested next message for one prospect",
		Arguments: []*mcp.PromptArgument{
			{Name: "person_id", Description: "Prospect id", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "outreach-suggestions",
		Description: "Prioritized next steps across the pipeline",
		Arguments: []*mcp.PromptArgument{
			{Name: "status", Description: "Only consider prospects in this stage"},
		},
	}, promptHandlers.GetPrompt)

	return server
}
