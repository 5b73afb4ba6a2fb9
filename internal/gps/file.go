package gps

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"nmeafix/internal/replay"
)

// ctxSleeper makes replay waits cancellable.
type ctxSleeper struct {
	ctx context.Context
}

func (s ctxSleeper) Sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-s.ctx.Done():
	case <-t.C:
	}
}

func (s *Service) startFileLocked(ctx context.Context) error {
	path := strings.TrimSpace(s.cfg.File.Path)
	if path == "" {
		return fmt.Errorf("gps file source requires a path")
	}
	speed := s.cfg.File.Speed
	if speed <= 0 {
		speed = 1
	}
	recs, err := replay.ReadFile(path)
	if err != nil {
		s.setErrorLocked(fmt.Sprintf("gps replay load failed path=%s: %v", path, err))
		return err
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		log.Printf("gps enabled source=file path=%s records=%d speed=%g loop=%v", path, len(recs), speed, s.cfg.File.Loop)
		err := replay.Play(recs, speed, s.cfg.File.Loop, ctxSleeper{ctx: childCtx}, func(line string) error {
			if err := childCtx.Err(); err != nil {
				return err
			}
			_, _ = s.HandleLine(time.Now().UTC(), line)
			return nil
		})
		if err != nil && childCtx.Err() == nil {
			s.setError(fmt.Sprintf("gps replay stopped: %v", err))
		}
	}()

	s.setSourceLocked(path, 0)
	return nil
}
