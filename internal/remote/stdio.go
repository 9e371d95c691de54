package remote

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
)

const maxLine = 1 << 20

// ServeStdio runs one session over line-delimited JSON: one request per
// input line, one response per output line. It returns when r is exhausted
// or ctx is done; a blocked read is not interrupted by ctx.
func ServeStdio(ctx context.Context, h *Handle, r io.Reader, w io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sess := NewSession(h, log)
	defer sess.Close()

	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		rsp, ok := sess.Process(line)
		if !ok {
			continue
		}
		bw.Write(rsp)
		bw.WriteByte('\n')
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	return sc.Err()
}
