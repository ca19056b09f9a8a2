package storage

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Field widths follow the original db-tutorial C struct, which reserves one
// extra byte per string field (room for a null terminator that Go's
// length-prefixed strings don't need but the on-disk layout still carries,
// per SPEC_FULL's data model).
const (
	MaxUsernameLen = 32
	MaxEmailLen    = 255

	idSize       = 4
	usernameSize = MaxUsernameLen + 1
	emailSize    = MaxEmailLen + 1

	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize

	// RowSize is the fixed serialized size of a Row.
	RowSize = idSize + usernameSize + emailSize
)

// Row is the single table's fixed schema: an unsigned 32-bit primary key
// plus two bounded ASCII strings.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Validate checks the field-length invariants without touching storage.
func (r Row) Validate() error {
	if len(r.Username) > MaxUsernameLen {
		return errors.Errorf("username %d bytes exceeds max %d", len(r.Username), MaxUsernameLen)
	}
	if len(r.Email) > MaxEmailLen {
		return errors.Errorf("email %d bytes exceeds max %d", len(r.Email), MaxEmailLen)
	}
	return nil
}

// SerializeRow packs r into dst, which must be exactly RowSize bytes. Both
// string fields are zero-padded to their fixed region.
func SerializeRow(r Row, dst []byte) error {
	if len(dst) != RowSize {
		return errors.Errorf("serialize row: dst is %d bytes, want %d", len(dst), RowSize)
	}
	if err := r.Validate(); err != nil {
		return errors.Wrap(err, "serialize row")
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+idSize], r.ID)
	copy(dst[usernameOffset:usernameOffset+usernameSize], r.Username)
	copy(dst[emailOffset:emailOffset+emailSize], r.Email)
	return nil
}

// DeserializeRow unpacks a RowSize-byte slice previously written by
// SerializeRow.
func DeserializeRow(src []byte) (Row, error) {
	if len(src) != RowSize {
		return Row{}, errors.Errorf("deserialize row: src is %d bytes, want %d", len(src), RowSize)
	}
	var r Row
	r.ID = binary.LittleEndian.Uint32(src[idOffset : idOffset+idSize])
	r.Username = string(bytes.TrimRight(src[usernameOffset:usernameOffset+usernameSize], "\x00"))
	r.Email = string(bytes.TrimRight(src[emailOffset:emailOffset+emailSize], "\x00"))
	return r, nil
}
