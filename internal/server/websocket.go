package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket serves the action protocol: each text message is a
// WSMessage or a JSON array of them, answered with one WSResponse (or an
// array of responses, in order).
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorw("WebSocket upgrade error", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer conn.Close()

	clientAddr := conn.RemoteAddr().String()
	logger.Log.Infow("Client connected", "remote_addr", clientAddr)

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warnw("WebSocket error", "error", err, "remote_addr", clientAddr)
			}
			break
		}

		var reply interface{}
		if trimmed := bytes.TrimSpace(p); len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []models.WSMessage
			if err := json.Unmarshal(p, &batch); err != nil {
				reply = invalidFormat(clientAddr, err)
			} else {
				responses := make([]models.WSResponse, 0, len(batch))
				for _, m := range batch {
					responses = append(responses, h.handleMessage(r.Context(), m, clientAddr))
				}
				reply = responses
			}
		} else {
			var msg models.WSMessage
			if err := json.Unmarshal(p, &msg); err != nil {
				reply = invalidFormat(clientAddr, err)
			} else {
				reply = h.handleMessage(r.Context(), msg, clientAddr)
			}
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Log.Errorw("Write error", "error", err, "remote_addr", clientAddr)
			break
		}
	}

	logger.Log.Infow("Client disconnected", "remote_addr", clientAddr)
}

func invalidFormat(clientAddr string, err error) models.WSResponse {
	logger.Log.Warnw("Invalid message format", "remote_addr", clientAddr, "error", err)
	return models.WSResponse{Success: false, Error: "invalid message format"}
}

// handleMessage processes a single WSMessage and returns a WSResponse
func (h *Handler) handleMessage(ctx context.Context, msg models.WSMessage, clientAddr string) models.WSResponse {
	logger.Log.Debugw("Processing action", "action", msg.Action, "remote_addr", clientAddr)

	var (
		data interface{}
		err  error
	)

	switch msg.Action {
	case "getProducts":
		data, err = h.shop.ListProducts(ctx)

	case "getProductByID":
		var id uuid.UUID
		if err = decodeData(msg.Data, &id); err == nil {
			data, err = h.shop.GetProduct(ctx, id)
		}

	case "getCustomers":
		data, err = h.shop.ListCustomers(ctx)

	case "getBalance":
		var email string
		if err = decodeData(msg.Data, &email); err == nil {
			data, err = h.shop.GetBalance(ctx, email)
		}

	case "getPurchases":
		data, err = h.shop.ListPurchases(ctx)

	case "getPurchasesByCustomer":
		var email string
		if err = decodeData(msg.Data, &email); err == nil {
			data, err = h.shop.CustomerPurchases(ctx, email)
		}

	case "addPurchase":
		var req service.PurchaseRequest
		if err = decodeData(msg.Data, &req); err == nil {
			data, err = h.shop.AttemptPurchase(ctx, req)
		}

	case "getSalesReport":
		data, err = h.shop.SalesReport(ctx)

	case "getPurchaseReport":
		data, err = h.shop.PurchaseReport(ctx)

	default:
		logger.Log.Infow("unknown action", "action", msg.Action, "remote_addr", clientAddr)
		return models.WSResponse{Success: false, Error: "unknown action"}
	}

	if err != nil {
		_, body := classify(err, h.verbose)
		return models.WSResponse{Success: false, Data: body, Error: body.Message}
	}
	return models.WSResponse{Success: true, Data: data}
}

// decodeData strictly decodes an action payload
func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Invalid("data", "is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return models.Invalid("data", err.Error())
	}
	return nil
}
