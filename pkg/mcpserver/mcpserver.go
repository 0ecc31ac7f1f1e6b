// Package mcpserver exposes the Gemini call as an MCP tool using the official
// MCP Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolName is the name of the single tool the server registers.
const ToolName = "generate"

const inputSchema = `{
  "type": "object",
  "properties": {
    "prompt": {
      "type": "string",
      "description": "Text sent to the model. Defaults to the configured prompt when empty."
    }
  }
}`

// Prompter sends a prompt to a model. *engine.Engine satisfies it.
type Prompter interface {
	Generate(ctx context.Context, prompt string) (modeladapter.Response, error)
}

// MCPServer serves the generate tool over the MCP protocol.
type MCPServer struct {
	server *mcp.Server
}

// New creates an MCPServer with the given name and version whose generate
// tool forwards to p.
func New(name, version string, p Prompter) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	server.AddTool(&mcp.Tool{
		Name:        ToolName,
		Description: "Send a single prompt to the configured Gemini model and return its text reply.",
		InputSchema: json.RawMessage(inputSchema),
	}, generateHandler(p))

	return &MCPServer{server: server}
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server with the given transport. Tests call it directly
// with InMemoryTransport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

type generateArgs struct {
	Prompt string `json:"prompt"`
}

func generateHandler(p Prompter) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args generateArgs
		if raw := req.Params.Arguments; len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}

		resp, err := p.Generate(ctx, args.Prompt)
		if err != nil {
			return errorResult(err), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: resp.Text}},
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
