package advisor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
)

var (
	moveTagRe    = regexp.MustCompile(`(?i)MOVE:\s*(\d)`)
	bareDigitRe  = regexp.MustCompile(`\b[0-8]\b`)
	promptFormat = "You are an expert Tic-Tac-Toe player. Current board position (cells 0-8):\n" +
		"%s\n" +
		"Current player: %s\n" +
		"Move history: %s\n\n" +
		"Analyze the position and return ONLY the number of the cell (0-8) for the best move. " +
		"Response format: \"MOVE:X\" where X is a number 0-8."
)

func BuildPrompt(b board.Board, toMove board.Cell, history board.MoveHistory) (string, error) {
	entries := history.All()
	if entries == nil {
		entries = []board.HistoryEntry{}
	}
	historyJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal move history: %w", err)
	}
	return fmt.Sprintf(promptFormat, b.String(), toMove, historyJSON), nil
}

// ParseMove extracts a position from free-form model output: a "MOVE:d" tag
// first, otherwise the first standalone digit 0-8.
func ParseMove(text string) (int, error) {
	if m := moveTagRe.FindStringSubmatch(text); m != nil {
		return strconv.Atoi(m[1])
	}
	if m := bareDigitRe.FindString(text); m != "" {
		return strconv.Atoi(m)
	}
	return board.NoMove, fmt.Errorf("%w: no move in advisor answer %q", errs.ErrSuggestionFailure, text)
}
