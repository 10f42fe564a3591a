// Package mcpserver binds the gateway's tool catalog to the Model Context
// Protocol over stdio, streamable HTTP, or SSE.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wilhg/dahua-mcp/pkg/errmodel"
	"github.com/wilhg/dahua-mcp/pkg/gateway"
)

type registeredTool struct {
	tool   gateway.Tool
	schema *jsonschema.Schema
}

// Server owns the tool registrations and builds one mcp.Server per transport
// session. Tools denied by the startup policy are never registered; the
// gateway enforces the same rules again on every call.
type Server struct {
	gw      *gateway.Gateway
	tools   []registeredTool
	name    string
	version string
	// fallbackCaller identifies the peer when the transport has no session
	// id (stdio). One process, one peer.
	fallbackCaller string
}

// New validates and filters the catalog against the gateway's rules. A
// malformed tool schema fails construction.
func New(gw *gateway.Gateway, tools []gateway.Tool, name, version string) (*Server, error) {
	s := &Server{
		gw:             gw,
		name:           name,
		version:        version,
		fallbackCaller: uuid.NewString(),
	}
	for _, tool := range tools {
		if d := gateway.Evaluate(tool, gw.Rules()); !d.Allowed {
			continue
		}
		if err := gateway.CompileSchema(tool.InputSchema); err != nil {
			return nil, fmt.Errorf("tool %s: invalid input schema: %w", tool.Name, err)
		}
		schema := new(jsonschema.Schema)
		if err := json.Unmarshal(tool.InputSchema, schema); err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		s.tools = append(s.tools, registeredTool{tool: tool, schema: schema})
	}
	return s, nil
}

// ToolNames lists the registered tools in catalog order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for _, rt := range s.tools {
		names = append(names, rt.tool.Name)
	}
	return names
}

// newMCPServer builds a protocol server with every registered tool attached.
func (s *Server) newMCPServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    s.name,
		Version: s.version,
	}, &mcp.ServerOptions{HasTools: true})

	for _, rt := range s.tools {
		destructive := rt.tool.Destructive
		srv.AddTool(&mcp.Tool{
			Name:        rt.tool.Name,
			Description: rt.tool.Description,
			InputSchema: rt.schema,
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    rt.tool.ReadOnly,
				DestructiveHint: &destructive,
				IdempotentHint:  rt.tool.Idempotent,
			},
		}, s.handler(rt.tool))
	}
	return srv
}

func (s *Server) handler(tool gateway.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(errmodel.Validation("decode", err.Error(), nil)), nil
			}
		}

		out, err := s.gw.Invoke(ctx, s.caller(req), tool, args)
		if err != nil {
			// Cancellation is a protocol-level outcome, not a tool failure.
			if ctx.Err() != nil {
				return nil, err
			}
			return errorResult(errmodel.From(err)), nil
		}
		return toolResult(out), nil
	}
}

// caller derives the rate-limit identity from the transport session.
func (s *Server) caller(req *mcp.CallToolRequest) string {
	if req != nil && req.Session != nil {
		if id := req.Session.ID(); id != "" {
			return id
		}
	}
	return s.fallbackCaller
}

func toolResult(out any) *mcp.CallToolResult {
	text, err := json.Marshal(out)
	if err != nil {
		return errorResult(errmodel.New(errmodel.KindInternal, "encode", err.Error(), nil))
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(text)}},
		StructuredContent: out,
	}
}

func errorResult(ce *errmodel.Error) *mcp.CallToolResult {
	payload := map[string]any{"error": ce}
	text, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(text)}},
		StructuredContent: payload,
		IsError:           true,
	}
}
