package storage

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Table owns a Pager and the root page number. In this design the root
// always lives at page 0 (§4.5 "Root promotion" preserves this even when
// the tree grows a level).
type Table struct {
	pager       *Pager
	rootPageNum uint32

	// SessionID tags this Table's log lines so multiple REPL runs against
	// different files can be told apart in a shared log stream.
	SessionID uuid.UUID

	log *logrus.Entry
}

// Open opens the database file at path, initializing a fresh empty leaf
// root if the file is new.
func Open(path string, log *logrus.Entry) (*Table, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	sessionID := uuid.New()
	log = log.WithField("session_id", sessionID)

	pager, err := OpenPager(path, log)
	if err != nil {
		return nil, err
	}

	t := &Table{
		pager:       pager,
		rootPageNum: 0,
		SessionID:   sessionID,
		log:         log.WithField("component", "table"),
	}

	if pager.NumPages() == 0 {
		root, err := pager.Get(0)
		if err != nil {
			return nil, err
		}
		initLeafNode(root)
		setRoot(root, true)
		t.log.Debug("initialized fresh database with an empty leaf root")
	}

	return t, nil
}

// Close flushes every resident page and releases the underlying file.
func (t *Table) Close() error {
	if err := t.pager.Close(); err != nil {
		return err
	}
	t.log.Debug("table closed")
	return nil
}
