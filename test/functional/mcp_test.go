package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/joaodperes/stardust/internal/mcp"
	"github.com/joaodperes/stardust/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}

func connectMCP(t *testing.T, ts *testserver.TestServer, token string) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "functional", Version: "test"}, nil)
	transport := &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{
			Transport: &bearerTransport{token: token, base: http.DefaultTransport},
		},
	}
	session, err := client.Connect(context.Background(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func toolText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestFunctional_MCPTools(t *testing.T) {
	ts := testserver.New(t)
	ts.AddPlayer(t, "carol-token", "carol")
	ctx := context.Background()

	session := connectMCP(t, ts, "carol-token")

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, mcp.Methods, names)

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_planet", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	var apiErr map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &apiErr))
	require.Equal(t, "PLANET_NOT_FOUND", apiErr["code"])

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "assign_home_planet",
		Arguments: map[string]any{"archetype": "gas_giant"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, toolText(t, res))

	var home planetResponse
	require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &home))
	require.Equal(t, "carol", home.Planet.PlayerID)

	// The same planet is visible over JSON-RPC.
	var viaRPC planetResponse
	call(t, ts, "carol-token", "get_planet", nil, &viaRPC)
	require.Equal(t, home.Planet.Coordinate, viaRPC.Planet.Coordinate)
}

func TestFunctional_MCPRequiresToken(t *testing.T) {
	ts := testserver.New(t)
	ts.AddPlayer(t, "carol-token", "carol")

	session := connectMCP(t, ts, "not-a-token")
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: "get_planet", Arguments: map[string]any{}})
	if err == nil {
		require.True(t, res.IsError)
	}
}
