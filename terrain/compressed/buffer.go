// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import "io"

// maxRun is the longest run a single tuple can describe.
const maxRun = 256

// Buffer run length encodes bytes.
// Each tuple is two bytes: the value followed by the run length minus one.
type Buffer struct {
	buf []byte
	off int // Read position
}

func (buffer *Buffer) Reset(buf []byte) {
	buffer.buf = buf
	buffer.off = 0
}

func (buffer *Buffer) writeByte(b byte) {
	buf := buffer.buf
	end := len(buf) - 2

	if end >= 0 && buf[end] == b && buf[end+1] < maxRun-1 {
		// Extend current run
		buf[end+1]++
	} else {
		// Start new tuple
		buf = append(buf, b, 0)
	}

	buffer.buf = buf
}

func (buffer *Buffer) Write(buf []byte) (int, error) {
	for _, b := range buf {
		buffer.writeByte(b)
	}
	return len(buf), nil
}

func (buffer *Buffer) readByte() (b byte, more bool) {
	b = buffer.buf[buffer.off]
	count := &buffer.buf[buffer.off+1]

	if *count > 0 {
		*count--
		more = true
	} else {
		buffer.off += 2
		more = buffer.off+1 < len(buffer.buf)
	}

	return
}

// Read consumes the buffer.
func (buffer *Buffer) Read(buf []byte) (int, error) {
	more := buffer.off+1 < len(buffer.buf)
	i := 0

	for ; i < len(buf) && more; i++ {
		buf[i], more = buffer.readByte()
	}

	if i == 0 {
		return 0, io.EOF
	}

	return i, nil
}

// Grow makes space for about n more runs.
func (buffer *Buffer) Grow(n int) {
	if old := buffer.Buffer(); cap(old)-len(old) < n*2 {
		buf := make([]byte, len(old), len(old)+n*2)
		copy(buf, old)
		buffer.buf = buf
		buffer.off = 0
	}
}

func (buffer *Buffer) Buffer() []byte {
	return buffer.buf[buffer.off:]
}
