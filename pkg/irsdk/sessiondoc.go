package irsdk

import (
	"bytes"
	"fmt"
)

var docTerminator = []byte("...")

// DocKey identifies the location (and revision) of the session document.
// A changed key means the document has to be parsed again.
type DocKey struct {
	Offset int32
	Len    int32
	Update int32
}

func DocKeyOf(h HeaderView) DocKey {
	return DocKey{
		Offset: h.SessionInfoOffset(),
		Len:    h.SessionInfoLen(),
		Update: h.SessionInfoUpdate(),
	}
}

// ExtractDocument returns raw up to and including the first terminator.
// The result is a copy. ErrMalformedSessionDocument is returned if raw
// contains no terminator.
func ExtractDocument(raw []byte) ([]byte, error) {
	idx := bytes.Index(raw, docTerminator)
	if idx < 0 {
		return nil, ErrMalformedSessionDocument
	}
	end := idx + len(docTerminator)
	ret := make([]byte, end)
	copy(ret, raw[:end])
	return ret, nil
}

// SessionDocument extracts the embedded session document referenced by the
// header. A missing terminator yields an empty document without error.
func SessionDocument(h HeaderView) ([]byte, error) {
	mem := h.Region()
	off := int64(h.SessionInfoOffset())
	length := int64(h.SessionInfoLen())
	if off < 0 || length < 0 || off > int64(len(mem)) {
		return nil, fmt.Errorf("session document at %d (len %d): %w", off, length, ErrOutOfBounds)
	}
	end := min(off+length, int64(len(mem)))
	doc, err := ExtractDocument(mem[off:end])
	if err != nil {
		return []byte{}, nil
	}
	return doc, nil
}
