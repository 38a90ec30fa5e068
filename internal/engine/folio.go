package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// NextFolio derives the next sale folio from the last issued one: the
// numeric tail after the final '-' (or the whole folio when there is no
// dash) is incremented and zero-padded to eight digits. An empty or
// unparseable last folio restarts the sequence at 1.
//
// Folio assignment must run inside the same transaction as the insert it
// numbers — there is no separate sequence object.
func NextFolio(last string) string {
	return fmt.Sprintf("%08d", nextSequence(last))
}

func nextSequence(last string) int64 {
	if last == "" {
		return 1
	}
	tail := last
	if idx := strings.LastIndex(last, "-"); idx >= 0 {
		tail = last[idx+1:]
	}
	if seq, err := strconv.ParseInt(tail, 10, 64); err == nil {
		return seq + 1
	}
	if seq, err := strconv.ParseInt(last, 10, 64); err == nil {
		return seq + 1
	}
	return 1
}
