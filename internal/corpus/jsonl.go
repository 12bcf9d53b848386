package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/resilience"
)

const maxLineSize = 16 << 20

// JSONLSource reads one JSON document per line. Blank lines are skipped.
type JSONLSource struct {
	open func() (io.ReadCloser, error)
	name string
}

// NewReaderSource reads documents from r. It can be iterated only once.
func NewReaderSource(r io.Reader, name string) *JSONLSource {
	return &JSONLSource{
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		name: name,
	}
}

// NewFileSource reads documents from path, decompressing according to its
// extension. The file is reopened on every Each call.
func NewFileSource(path string) *JSONLSource {
	return &JSONLSource{
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			rc, err := Decompress(f, path)
			if err != nil {
				f.Close()
				return nil, err
			}
			return closeBoth{ReadCloser: rc, file: f}, nil
		},
		name: path,
	}
}

func (s *JSONLSource) Each(ctx context.Context, fn func(Document) error) error {
	rc, err := s.open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.name, err)
	}
	defer rc.Close()
	return eachLine(ctx, rc, s.name, fn)
}

func eachLine(ctx context.Context, r io.Reader, name string, fn func(Document) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return resilience.Permanent(fmt.Errorf("%s line %d: %w", name, line, err))
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

type closeBoth struct {
	io.ReadCloser
	file *os.File
}

func (c closeBoth) Close() error {
	err := c.ReadCloser.Close()
	if ferr := c.file.Close(); err == nil {
		err = ferr
	}
	return err
}
