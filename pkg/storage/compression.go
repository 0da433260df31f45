package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec identifies a stream compression format
type Codec int

const (
	None Codec = iota
	Zstd
	Gzip
)

func (c Codec) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	default:
		return "none"
	}
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CodecFor picks the codec from a file name suffix.
// BAM files are BGZF and are left to the alignment reader.
func CodecFor(name string) Codec {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return Zstd
	case strings.HasSuffix(lower, ".gz"):
		return Gzip
	default:
		return None
	}
}

// NewDecompressor wraps r according to the name suffix. Unnamed streams are
// sniffed for the zstd frame magic.
func NewDecompressor(r io.ReadCloser, name string) (io.ReadCloser, error) {
	codec := CodecFor(name)
	br := bufio.NewReader(r)
	if codec == None {
		if head, _ := br.Peek(len(zstdMagic)); bytes.Equal(head, zstdMagic) {
			codec = Zstd
		}
	}

	switch codec {
	case Zstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return &readCloser{Reader: dec, close: func() error {
			dec.Close()
			return r.Close()
		}}, nil
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip decoder: %w", err)
		}
		return &readCloser{Reader: gz, close: func() error {
			gz.Close()
			return r.Close()
		}}, nil
	default:
		return &readCloser{Reader: br, close: r.Close}, nil
	}
}

// NewCompressor wraps w according to the name suffix. Closing the returned
// writer flushes the encoder and then closes w.
func NewCompressor(w io.WriteCloser, name string) (io.WriteCloser, error) {
	switch CodecFor(name) {
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return &writeCloser{Writer: enc, flush: enc.Close, inner: w}, nil
	case Gzip:
		gz := gzip.NewWriter(w)
		return &writeCloser{Writer: gz, flush: gz.Close, inner: w}, nil
	default:
		return w, nil
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error {
	return r.close()
}

type writeCloser struct {
	io.Writer
	flush func() error
	inner io.WriteCloser
}

func (w *writeCloser) Close() error {
	if err := w.flush(); err != nil {
		w.inner.Close()
		return fmt.Errorf("failed to flush compressed stream: %w", err)
	}
	return w.inner.Close()
}
