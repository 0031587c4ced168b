package board

// HistoryEntry is one recorded move. History never influences decisions; it is
// only forwarded to suggestion sources as context.
type HistoryEntry struct {
	Player   Cell `json:"player"`
	Position int  `json:"position"`
}

type MoveHistory struct {
	entries []HistoryEntry
}

func NewMoveHistory(entries []HistoryEntry) MoveHistory {
	return MoveHistory{entries: append([]HistoryEntry(nil), entries...)}
}

// Append returns a history extended by one entry; the receiver is unchanged.
func (h MoveHistory) Append(player Cell, position int) MoveHistory {
	next := make([]HistoryEntry, len(h.entries), len(h.entries)+1)
	copy(next, h.entries)
	return MoveHistory{entries: append(next, HistoryEntry{Player: player, Position: position})}
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}
