package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewHTTPHandler creates a plain JSON-RPC HTTP bridge to the server.
// It holds one in-process client session, so callers do not need the
// initialize handshake; each POST carries a single request. The
// streamable MCP endpoint is the primary transport, this one exists
// for curl-style access and tests.
func NewHTTPHandler(server *sdkmcp.Server, logger *slog.Logger) (http.Handler, error) {
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		return nil, fmt.Errorf("failed to connect server transport: %w", err)
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "laptrack-http-bridge",
		Version: "0.1.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect client transport: %w", err)
	}

	return &httpHandler{
		session: session,
		logger:  logger,
	}, nil
}

type httpHandler struct {
	session *sdkmcp.ClientSession
	logger  *slog.Logger
}

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonrpcError `json:"error,omitempty"`
	ID      any           `json:"id,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, -32700, "Parse error", nil)
		return
	}

	var req jsonrpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, -32700, "Parse error", nil)
		return
	}

	result, err := h.dispatch(r.Context(), req)
	if err != nil {
		h.writeError(w, -32603, err.Error(), req.ID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jsonrpcResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

func (h *httpHandler) dispatch(ctx context.Context, req jsonrpcRequest) (any, error) {
	switch req.Method {
	case "tools/list":
		return h.session.ListTools(ctx, nil)
	case "tools/call":
		var params sdkmcp.CallToolParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
		}
		return h.session.CallTool(ctx, &params)
	case "resources/list":
		return h.session.ListResources(ctx, nil)
	case "resources/read":
		var params sdkmcp.ReadResourceParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
		}
		return h.session.ReadResource(ctx, &params)
	default:
		return nil, fmt.Errorf("unsupported method %q", req.Method)
	}
}

func (h *httpHandler) writeError(w http.ResponseWriter, code int, message string, id any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC errors are still 200 OK
	json.NewEncoder(w).Encode(jsonrpcResponse{
		JSONRPC: "2.0",
		Error: &jsonrpcError{
			Code:    code,
			Message: message,
		},
		ID: id,
	})
}
