package storage

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// PageSize is the fixed size of every page, on disk and in the cache.
	PageSize = 4096

	// MaxPages bounds the page cache. It is a hard invariant of the
	// storage engine, not a tunable: exceeding it is a fatal error.
	MaxPages = 100
)

// Pager maps page numbers to fixed-size byte buffers, demand-loading from
// the backing file and holding pages dirty in memory until Flush or Close.
// It has no knowledge of row or node structure; that lives in node.go.
type Pager struct {
	file     *os.File
	numPages uint32
	pages    [MaxPages][]byte

	log *logrus.Entry
}

// OpenPager opens (creating if missing) the file at path for read/write and
// builds a Pager around it. The file length must be a multiple of PageSize.
func OpenPager(path string, log *logrus.Entry) (*Pager, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "open database file %q", path)
	}

	length, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "seek to end of database file")
	}
	if length%PageSize != 0 {
		f.Close()
		return nil, errors.Wrapf(ErrFileNotPageAligned, "file length %d", length)
	}

	p := &Pager{
		file:     f,
		numPages: uint32(length / PageSize),
		log:      log.WithField("component", "pager"),
	}
	p.log.WithField("num_pages", p.numPages).Debug("pager opened")
	return p, nil
}

// NumPages reports the Pager's current logical page count.
func (p *Pager) NumPages() uint32 {
	return p.numPages
}

// Get returns the buffer for pageNum, loading it from disk on first access
// (or zeroing it, if pageNum extends the file) and caching it for the
// lifetime of the Pager. The same page number always yields the same
// buffer: callers may hold and mutate it, and later Get calls for that page
// number observe the mutation.
func (p *Pager) Get(pageNum uint32) ([]byte, error) {
	if pageNum >= MaxPages {
		return nil, errors.Wrapf(ErrPageOutOfBounds, "requested page %d, max %d", pageNum, MaxPages)
	}

	if p.pages[pageNum] == nil {
		buf := make([]byte, PageSize)
		if pageNum < p.numPages {
			if err := p.readPage(pageNum, buf); err != nil {
				return nil, err
			}
		} else {
			p.numPages = pageNum + 1
		}
		p.pages[pageNum] = buf
		p.log.WithField("page_num", pageNum).Trace("page loaded into cache")
	}
	return p.pages[pageNum], nil
}

func (p *Pager) readPage(pageNum uint32, buf []byte) error {
	off := int64(pageNum) * PageSize
	n, err := p.file.ReadAt(buf, off)
	// A short read is tolerated (the rest of buf stays zero) as long as it's
	// not a real I/O error; io.EOF/io.ErrUnexpectedEOF on a partial last page
	// is the expected case right after the file was extended off-page.
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Wrapf(err, "read page %d (%d bytes read)", pageNum, n)
	}
	return nil
}

// Flush writes the resident buffer for pageNum back to disk at its page-
// aligned offset. Flushing a page number with no resident buffer is fatal.
func (p *Pager) Flush(pageNum uint32) error {
	if pageNum >= MaxPages || p.pages[pageNum] == nil {
		return errors.Wrapf(ErrFlushEmptySlot, "page %d", pageNum)
	}
	off := int64(pageNum) * PageSize
	if _, err := p.file.WriteAt(p.pages[pageNum], off); err != nil {
		return errors.Wrapf(err, "write page %d", pageNum)
	}
	return nil
}

// Close flushes every resident page and closes the backing file handle. It
// does not zero the in-memory cache; the Pager must not be used afterward.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			return err
		}
	}
	if err := p.file.Close(); err != nil {
		return errors.Wrap(err, "close database file")
	}
	p.log.Debug("pager closed, all resident pages flushed")
	return nil
}
