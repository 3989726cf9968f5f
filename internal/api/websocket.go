package api

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gorilla/websocket"

	"github.com/dukepan/linkpulse/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin more strictly
		return true
	},
}

// StatsSocketHandler upgrades the connection and subscribes it to the live
// click feed. Auth uses a token query parameter because browsers cannot set
// headers on websocket dials.
func (r *Router) StatsSocketHandler(w http.ResponseWriter, req *http.Request) {
	_, span := otel.Tracer("websocket-server").Start(req.Context(), "StatsSocket")
	defer span.End()

	token := req.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		span.SetStatus(codes.Error, "Missing token")
		return
	}

	claims, err := r.jwtMgr.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		span.SetStatus(codes.Error, fmt.Sprintf("Invalid token: %v", err))
		return
	}
	span.SetAttributes(attribute.String("user.id", claims.UserID.String()))

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("Failed to upgrade WebSocket connection: %v", err))
		return
	}

	span.SetStatus(codes.Ok, "WebSocket connection established")

	// The client's pumps own the connection from here.
	events.NewClient(r.hub, conn).Start()
}
