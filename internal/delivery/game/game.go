package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"senti_ttt/internal/domain/game"
	errs "senti_ttt/internal/errors"
	"senti_ttt/internal/httpresponse"
	"senti_ttt/internal/report"
	gameuc "senti_ttt/internal/usecase/game"
	"senti_ttt/internal/utils"
)

const (
	serviceMessage = "Senti TicTacToe Backend"
	serviceName    = "Senti TicTacToe AI"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type GameHandler struct {
	log    *zap.SugaredLogger
	moveUC *gameuc.MoveUseCase
}

func NewGameHandler(log *zap.SugaredLogger, moveUC *gameuc.MoveUseCase) *GameHandler {
	return &GameHandler{
		log:    log,
		moveUC: moveUC,
	}
}

func (g *GameHandler) Register(r chi.Router) {
	r.Get("/", g.HandleRoot)
	r.Get("/api/health", g.HandleHealth)
	r.Post("/api/ai-move", g.HandleAiMove)
	r.Get("/api/decisions", g.HandleDecisions)
	r.Get("/api/decisions/report.pdf", g.HandleDecisionsReport)
	r.Get("/ws/play", g.HandlePlay)
}

func (g *GameHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteJSON(g.log, w, http.StatusOK, game.ServiceStatus{Status: "OK", Message: serviceMessage})
}

func (g *GameHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteJSON(g.log, w, http.StatusOK, game.ServiceStatus{Status: "OK", Service: serviceName})
}

// HandleAiMove godoc
// @Summary      Choose the automated player's move
// @Accept       json
// @Produce      json
// @Param        request body game.AiMoveRequest true "board, player to move, history"
// @Success      200 {object} game.AiMoveResponse
// @Failure      400 {object} httpresponse.ErrorResponse
// @Failure      422 {object} httpresponse.ErrorResponse
// @Router       /api/ai-move [post]
func (g *GameHandler) HandleAiMove(w http.ResponseWriter, r *http.Request) {
	var req game.AiMoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		httpresponse.WriteJSONError(g.log, w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc+": "+err.Error())
		return
	}

	resp, err := g.moveUC.AiMove(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteJSON(g.log, w, http.StatusOK, resp)
}

// HandleDecisions godoc
// @Summary      Latest journaled decisions, newest first
// @Produce      json
// @Param        limit query int false "entries to return (default 20, max 200)"
// @Success      200 {array} game.DecisionRecord
// @Failure      503 {object} httpresponse.ErrorResponse
// @Router       /api/decisions [get]
func (g *GameHandler) HandleDecisions(w http.ResponseWriter, r *http.Request) {
	records, ok := g.latestDecisions(w, r)
	if !ok {
		return
	}
	httpresponse.WriteJSON(g.log, w, http.StatusOK, records)
}

// HandleDecisionsReport godoc
// @Summary      Latest journaled decisions as a PDF report
// @Produce      application/pdf
// @Param        limit query int false "entries to include (default 20, max 200)"
// @Router       /api/decisions/report.pdf [get]
func (g *GameHandler) HandleDecisionsReport(w http.ResponseWriter, r *http.Request) {
	records, ok := g.latestDecisions(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteDecisions(&buf, records, g.moveUC.Now()); err != nil {
		g.log.Errorw("render decisions report", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="decisions.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (g *GameHandler) latestDecisions(w http.ResponseWriter, r *http.Request) ([]game.DecisionRecord, bool) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpresponse.WriteJSONError(g.log, w, http.StatusBadRequest, "limit must be a non-negative integer")
			return nil, false
		}
		limit = n
	}

	records, err := g.moveUC.ListDecisions(r.Context(), limit)
	if err != nil {
		g.writeError(w, err)
		return nil, false
	}
	if records == nil {
		records = []game.DecisionRecord{}
	}
	return records, true
}

// HandlePlay answers every AiMoveRequest frame with an AiMoveResponse frame,
// or a WsError frame when the request fails. The connection survives errors.
func (g *GameHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(utils.MaxRequestBody)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Warnw("websocket read failed", "error", err)
			}
			return
		}

		var frame any
		var req game.AiMoveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			frame = game.WsError{Error: httpresponse.MALFORMEDJSON_errorDesc + ": " + err.Error()}
		} else if resp, err := g.moveUC.AiMove(r.Context(), req); err != nil {
			frame = game.WsError{Error: err.Error()}
		} else {
			frame = resp
		}

		if err := conn.WriteJSON(frame); err != nil {
			g.log.Warnw("websocket write failed", "error", err)
			return
		}
	}
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		g.log.Errorw("request failed", "error", err)
		httpresponse.WriteJSONError(g.log, w, status, "Internal server error")
		return
	}
	httpresponse.WriteJSONError(g.log, w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvariantViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrMalformedBoard), errors.Is(err, errs.ErrIllegalMove):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrJournalDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
