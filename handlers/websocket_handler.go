package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/arman-dev/playoff-system/brackets"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin; CORS is enforced
	// at the router level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

var errMissingRoomID = errors.New("tournament id is required")

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Subscribe upgrades the connection and joins the tournament room. The
// socket is push-only; clients receive bracket and match events.
func (h *WebSocketHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		badRequestResponse(w, r, errMissingRoomID)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
