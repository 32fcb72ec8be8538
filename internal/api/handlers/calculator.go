package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/divcal/internal/calculator"
	"github.com/wonny/divcal/internal/contracts"
	"github.com/wonny/divcal/internal/dividends"
	"github.com/wonny/divcal/pkg/config"
	"github.com/wonny/divcal/pkg/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CalculatorHandler serves the yield calculator over REST and websocket
// ⭐ SSOT: 계산기 상태 전이는 calculator.Reduce만 사용
type CalculatorHandler struct {
	dividends *dividends.Service
	loc       *time.Location
	now       Clock
	logger    *logger.Logger
}

// NewCalculatorHandler creates a new calculator handler
func NewCalculatorHandler(div *dividends.Service, cfg config.CalendarConfig, now Clock, log *logger.Logger) *CalculatorHandler {
	if now == nil {
		now = time.Now
	}
	return &CalculatorHandler{
		dividends: div,
		loc:       cfg.Location(),
		now:       now,
		logger:    log,
	}
}

// CalculatorRequest is the body of POST /api/calculator
type CalculatorRequest struct {
	State  calculator.State  `json:"state"`
	Action calculator.Action `json:"action"`
}

// CalculatorResponse is a state with its derived figures
type CalculatorResponse struct {
	State   calculator.State   `json:"state"`
	Summary calculator.Summary `json:"summary"`
	Display calculator.Display `json:"display"`
}

func newCalculatorResponse(s calculator.State) CalculatorResponse {
	sum := s.Summarize()
	return CalculatorResponse{State: s, Summary: sum, Display: sum.Display()}
}

// FormatRequest is the body of POST /api/calculator/format
type FormatRequest struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// FormatResponse is a reformatted field and its numeric value
type FormatResponse struct {
	Text   string  `json:"text"`
	Cursor int     `json:"cursor"`
	Value  float64 `json:"value"`
}

func format(req FormatRequest) (FormatResponse, error) {
	edit := calculator.Reformat(req.Text, req.Cursor)
	value, err := calculator.ParseGrouped(edit.Text)
	if err != nil {
		return FormatResponse{}, err
	}
	return FormatResponse{Text: edit.Text, Cursor: edit.Cursor, Value: value}, nil
}

// Reduce applies one action to a calculator state
// POST /api/calculator {"state":{...},"action":{"type":"set_shares","value":5000}}
func (h *CalculatorHandler) Reduce(w http.ResponseWriter, r *http.Request) {
	var req CalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	next, err := calculator.Reduce(req.State, req.Action)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, newCalculatorResponse(next))
}

// Format regroups a numeric field and moves the caret
// POST /api/calculator/format {"text":"12345","cursor":5}
func (h *CalculatorHandler) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := format(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// wsMessage is a client → server calculator message.
// Type "action" carries Action; type "input" carries Field/Text/Cursor.
type wsMessage struct {
	Type   string            `json:"type"`
	Action calculator.Action `json:"action"`
	Field  string            `json:"field"`
	Text   string            `json:"text"`
	Cursor int               `json:"cursor"`
}

// wsReply is a server → client calculator message
type wsReply struct {
	Type  string              `json:"type"`
	Calc  *CalculatorResponse `json:"calculator,omitempty"`
	Edit  *FormatResponse     `json:"edit,omitempty"`
	Field string              `json:"field,omitempty"`
	Error string              `json:"error,omitempty"`
}

var fieldActions = map[string]calculator.ActionType{
	"price":      calculator.SetPrice,
	"shares":     calculator.SetShares,
	"investment": calculator.SetInvestment,
}

// calculatorSession holds one connection's state. Only the read loop
// mutates state; the write loop only drains send.
type calculatorSession struct {
	conn   *websocket.Conn
	state  calculator.State
	send   chan wsReply
	done   chan struct{}
	logger *logger.Logger
}

// ServeWS runs a calculator session
// GET /ws/calculator?code=2330
func (h *CalculatorHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	state := calculator.NewState(0, 0)
	if raw := r.URL.Query().Get("code"); raw != "" {
		code, ok := contracts.NormalizeStockCode(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid stock code")
			return
		}
		view, err := h.dividends.StockView(r.Context(), code, today(h.now, h.loc))
		if err != nil {
			respondServiceError(w, r, h.logger, err, map[string]interface{}{"code": code})
			return
		}
		state = view.Calculator
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	s := &calculatorSession{
		conn:   conn,
		state:  state,
		send:   make(chan wsReply, 16),
		done:   make(chan struct{}),
		logger: h.logger,
	}

	initial := newCalculatorResponse(state)
	s.send <- wsReply{Type: "state", Calc: &initial}

	go s.writePump()
	s.readPump()
}

func (s *calculatorSession) handle(msg wsMessage) wsReply {
	switch msg.Type {
	case "action":
		next, err := calculator.Reduce(s.state, msg.Action)
		if err != nil {
			return wsReply{Type: "error", Error: err.Error()}
		}
		s.state = next
		resp := newCalculatorResponse(next)
		return wsReply{Type: "state", Calc: &resp}

	case "input":
		actionType, ok := fieldActions[msg.Field]
		if !ok {
			return wsReply{Type: "error", Error: "unknown field " + msg.Field}
		}
		edit, err := format(FormatRequest{Text: msg.Text, Cursor: msg.Cursor})
		if err != nil {
			return wsReply{Type: "error", Error: err.Error()}
		}
		next, err := calculator.Reduce(s.state, calculator.Action{Type: actionType, Value: edit.Value})
		if err != nil {
			return wsReply{Type: "error", Error: err.Error()}
		}
		s.state = next
		resp := newCalculatorResponse(next)
		return wsReply{Type: "input", Field: msg.Field, Edit: &edit, Calc: &resp}

	default:
		return wsReply{Type: "error", Error: "unknown message type " + msg.Type}
	}
}

// readPump decodes messages until the client goes away, then closes send
func (s *calculatorSession) readPump() {
	defer close(s.send)

	s.conn.SetReadLimit(wsReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WithError(err).Debug("Calculator websocket closed")
			}
			return
		}

		reply := wsReply{Type: "error", Error: "invalid message"}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err == nil {
			reply = s.handle(msg)
		}

		select {
		case s.send <- reply:
		case <-s.done:
			return
		}
	}
}

// writePump forwards replies and keeps the connection alive with pings
func (s *calculatorSession) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		s.conn.Close()
	}()

	for {
		select {
		case reply, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(reply); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
