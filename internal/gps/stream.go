package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"time"
)

const (
	streamMinBackoff = 250 * time.Millisecond
	streamMaxBackoff = 10 * time.Second
)

// stream describes a reconnecting TCP line source.
type stream struct {
	name string
	addr string
	dial func(ctx context.Context, addr string) (net.Conn, error)
	// hello is written after each connect. Optional.
	hello func(conn net.Conn) error
	// skip drops non-NMEA lines the peer interleaves. Optional.
	skip func(line string) bool
}

func dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: 2 * time.Second}
	return d.DialContext(ctx, "tcp", addr)
}

func (s *Service) startStreamLocked(ctx context.Context, st stream) error {
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log.Printf("gps enabled source=%s addr=%s", st.name, st.addr)
		backoff := streamMinBackoff

		for {
			select {
			case <-childCtx.Done():
				return
			default:
			}

			conn, err := st.dial(childCtx, st.addr)
			if err != nil {
				s.setError(fmt.Sprintf("%s dial failed addr=%s: %v", st.name, st.addr, err))
				select {
				case <-childCtx.Done():
					return
				case <-time.After(backoff):
				}
				backoff *= 2
				if backoff > streamMaxBackoff {
					backoff = streamMaxBackoff
				}
				continue
			}
			backoff = streamMinBackoff

			s.mu.Lock()
			// Swap the closer so Close() can interrupt an active connection.
			s.closer = conn
			s.mu.Unlock()

			func() {
				defer func() { _ = conn.Close() }()

				if st.hello != nil {
					if err := st.hello(conn); err != nil {
						s.setError(fmt.Sprintf("%s handshake failed: %v", st.name, err))
						return
					}
				}
				err := s.readLines(childCtx, conn, st.skip)
				if childCtx.Err() == nil {
					s.setError(fmt.Sprintf("%s read stopped: %v", st.name, err))
				}
			}()
			// Loop and reconnect.
		}
	}()

	s.setSourceLocked(st.addr, 0)
	return nil
}

// readLines feeds each line of r to HandleLine until r fails or ctx ends.
// It returns io.EOF when r ends cleanly.
func (s *Service) readLines(ctx context.Context, r io.Reader, skip func(string) bool) error {
	sc := bufio.NewScanner(r)
	// Sentences are at most 82 chars on the wire; gpsd JSON reports are longer.
	sc.Buffer(make([]byte, 0, 4096), 256*1024)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if skip != nil && skip(line) {
			continue
		}
		_, _ = s.HandleLine(time.Now().UTC(), line)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
