package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/germanamz/minirag/pkg/modeladapter"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrompter struct {
	got   []string
	reply string
	err   error
}

func (s *stubPrompter) Generate(_ context.Context, prompt string) (modeladapter.Response, error) {
	s.got = append(s.got, prompt)
	if s.err != nil {
		return modeladapter.Response{}, s.err
	}
	return modeladapter.Response{Text: s.reply}, nil
}

// setupTestClient creates an MCPServer, connects an SDK client via in-memory
// transports, and returns the client session. The server runs in a background
// goroutine tied to t.Cleanup.
func setupTestClient(t *testing.T, p Prompter) *mcp.ClientSession {
	t.Helper()

	s := New("test-server", "1.0.0", p)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	return tc.Text
}

func TestListTools(t *testing.T) {
	session := setupTestClient(t, &stubPrompter{})

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, ToolName, result.Tools[0].Name)
	assert.NotEmpty(t, result.Tools[0].Description)
}

func TestGenerate_WithPrompt(t *testing.T) {
	p := &stubPrompter{reply: "Hi there!"}
	session := setupTestClient(t, p)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"prompt": "Hello Gemini!"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Hi there!", textOf(t, result))
	assert.Equal(t, []string{"Hello Gemini!"}, p.got)
}

func TestGenerate_NoPromptUsesDefault(t *testing.T) {
	p := &stubPrompter{reply: "ok"}
	session := setupTestClient(t, p)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, []string{""}, p.got)
}

func TestGenerate_BackendError(t *testing.T) {
	session := setupTestClient(t, &stubPrompter{err: errors.New("gemini: unexpected status 403: denied")})

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"prompt": "hi"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "gemini: unexpected status 403: denied", textOf(t, result))
}

func TestGenerate_InvalidArguments(t *testing.T) {
	p := &stubPrompter{}
	session := setupTestClient(t, p)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: map[string]any{"prompt": 42},
	})
	if err == nil {
		assert.True(t, result.IsError)
	}
	assert.Empty(t, p.got)
}

func TestContextCancellation(t *testing.T) {
	s := New("srv", "1.0.0", &stubPrompter{})
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.run(ctx, serverTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
