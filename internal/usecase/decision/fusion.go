package decision

import "senti_ttt/internal/usecase/search"

// Fuse combines an external suggestion with the search verdict. best is the
// search result for the position, suggestion carries the suggested move and
// the score of the position after it. The suggestion is kept unless it
// scores strictly below best.
func Fuse(best, suggestion search.Result) (search.Result, bool) {
	if suggestion.Score < best.Score {
		return best, false
	}
	return suggestion, true
}
