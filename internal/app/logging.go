package app

import (
	"io"

	logging "github.com/ipfs/go-log/v2"

	"github.com/petervdpas/codeseed/internal/viewer"
)

// setupLogging configures go-log for the process and tees its plaintext
// output into a LogBuffer for /api/logs.
func setupLogging(level string) *viewer.LogBuffer {
	lvl, err := logging.LevelFromString(level)
	if err != nil {
		lvl = logging.LevelInfo
	}
	logging.SetupLogging(logging.Config{
		Format: logging.PlaintextOutput,
		Stderr: true,
		Level:  lvl,
	})

	logs := viewer.NewLogBuffer(800)
	r := logging.NewPipeReader(logging.PipeFormat(logging.PlaintextOutput), logging.PipeLevel(lvl))
	go func() {
		_, _ = io.Copy(logs, r)
	}()
	return logs
}
