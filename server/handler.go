package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"partsdesk/internal"
	"partsdesk/logger"
	"partsdesk/types"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handleRoot provides basic information about the service
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "partsdesk",
		"version": s.version,
		"status":  "running",
		"endpoints": []string{
			"GET /health - Health check",
			"GET /metrics - Prometheus metrics",
			"POST /v1/messages/parse - Render one chat message",
			"POST /v1/conversations/render - Render a conversation or message list",
		},
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleParseMessage renders a single message. A body without a role is treated as an assistant message.
func (s *Server) handleParseMessage(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	if !gjson.ParseBytes(body).IsObject() {
		s.badRequest(w, r, "request body must be a message object")
		return
	}

	var msg types.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.badRequest(w, r, "invalid message: "+err.Error())
		return
	}
	if !gjson.GetBytes(body, "role").Exists() {
		msg.Role = types.RoleAssistant
	}

	writeJSON(w, http.StatusOK, s.renderer.RenderMessage(r.Context(), msg))
}

// handleRenderConversation renders a conversation object or a bare message array
func (s *Server) handleRenderConversation(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var conv types.Conversation
	switch parsed := gjson.ParseBytes(body); {
	case parsed.IsArray():
		if err := json.Unmarshal(body, &conv.Messages); err != nil {
			s.badRequest(w, r, "invalid message list: "+err.Error())
			return
		}
	case parsed.IsObject() && parsed.Get("messages").IsArray():
		if err := json.Unmarshal(body, &conv); err != nil {
			s.badRequest(w, r, "invalid conversation: "+err.Error())
			return
		}
	default:
		s.badRequest(w, r, "request body must be a conversation or a message array")
		return
	}

	writeJSON(w, http.StatusOK, s.renderer.RenderConversation(r.Context(), conv))
}

// readBody reads a size-capped JSON body, writing the error response itself on failure
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.Warn(logger.ComponentServer, logger.CategoryValidation, internal.GetRequestID(r.Context()),
				"Request body too large", map[string]interface{}{"limit": tooLarge.Limit})
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		s.badRequest(w, r, "failed to read request body")
		return nil, false
	}

	if !gjson.ValidBytes(body) {
		s.badRequest(w, r, "invalid JSON")
		return nil, false
	}
	return body, true
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.log.Warn(logger.ComponentServer, logger.CategoryValidation, internal.GetRequestID(r.Context()), message, nil)
	writeError(w, http.StatusBadRequest, message)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
