package client

const (
	// API version prefix
	apiV1Prefix = "/api/v1"

	// Authentication endpoints
	endpointLogin    = apiV1Prefix + "/auth/login"
	endpointRegister = apiV1Prefix + "/auth/register"
	endpointMe       = apiV1Prefix + "/auth/me"

	// Workspace endpoints
	endpointWorkspaces = apiV1Prefix + "/workspaces" // GET, POST

	// Conversation endpoints
	endpointConversations       = apiV1Prefix + "/conversations"                       // GET ?workspace_id=, POST
	endpointConversationThreads = apiV1Prefix + "/conversations/%s/threads"            // GET
	endpointThreadMessages      = apiV1Prefix + "/conversations/%s/threads/%s/messages" // GET
	endpointInject              = apiV1Prefix + "/conversations/%s/inject"             // POST

	// Orchestration endpoints
	endpointChat      = apiV1Prefix + "/orchestration/conversations/%s/threads/%s/chat" // POST
	endpointRun       = apiV1Prefix + "/orchestration/runs/%s"                          // GET
	endpointRunStream = apiV1Prefix + "/orchestration/runs/%s/stream"                   // GET, text/event-stream

	// Workflow endpoints
	endpointTemplates   = apiV1Prefix + "/workflows/templates"        // GET ?workspace_id=, POST
	endpointTemplate    = apiV1Prefix + "/workflows/templates/%s"     // GET
	endpointTemplateRun = apiV1Prefix + "/workflows/templates/%s/run" // POST
)
