package classifier

import (
	"bytes"
	"errors"
)

// maxOutputBytes bounds what is kept of each analyzer output stream
const maxOutputBytes = 1 << 20

// ErrOutputLimit is reported when the analyzer writes more than
// maxOutputBytes to stdout or stderr
var ErrOutputLimit = errors.New("analyzer output exceeds limit")

// cappedBuffer keeps the first limit bytes written to it and discards the
// rest, so the child never blocks or sees a broken pipe
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room < len(p) {
		b.overflow = true
		b.buf.Write(p[:max(room, 0)])
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
