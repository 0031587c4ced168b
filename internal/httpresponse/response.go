package httpresponse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

const INTERNALERRORJSON = `{"error":"Internal server error"}`

const MALFORMEDJSON_errorDesc = "json unmarshalling error"

func WriteJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Errorw("marshal response", "error", err)
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Debugw("write response", "error", err)
	}
}

func WriteJSONError(log *zap.SugaredLogger, w http.ResponseWriter, status int, msg string) {
	log.Debugw("request failed", "status", status, "error", msg)
	WriteJSON(log, w, status, ErrorResponse{Error: msg})
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// like http.Error, only the Content-Type differs
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}
