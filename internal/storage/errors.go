package storage

import "errors"

// Input errors: reported to the REPL's caller, never wrapped, engine state
// is unchanged when these occur.
var (
	// ErrDuplicateKey is returned by Insert when the key is already present.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Fatal errors: the engine cannot make progress. Callers should log and
// terminate rather than continue the REPL loop.
var (
	ErrFileNotPageAligned = errors.New("db file is not a whole number of pages")
	ErrPageOutOfBounds    = errors.New("page number out of bounds")
	ErrFlushEmptySlot     = errors.New("tried to flush an empty page slot")
)
