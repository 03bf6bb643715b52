package infra

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

const checkExecInterval = 5 * time.Second

// MonitorExecutable signals once when the running binary is replaced on
// disk. The channel is closed when ctx ends or the binary cannot be
// watched.
func MonitorExecutable(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	logger := log.WithField("context", "exe_monitor")
	go func() {
		defer close(ch)

		exeFilename, err := os.Executable()
		if err != nil {
			logger.WithError(err).Warn("cant resolve executable path")
			return
		}
		stat, err := os.Stat(exeFilename)
		if err != nil {
			logger.WithError(err).Warn("cant stat executable")
			return
		}
		originalTime := stat.ModTime()

		ticker := time.NewTicker(checkExecInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stat, err := os.Stat(exeFilename)
				if err != nil {
					logger.WithError(err).Debug("cant stat executable on tick")
					continue
				}
				if !originalTime.Equal(stat.ModTime()) {
					logger.WithField("path", exeFilename).Info("executable changed")
					ch <- struct{}{}
					return
				}
			}
		}
	}()
	return ch
}
