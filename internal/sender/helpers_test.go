package sender

import (
	"time"

	"statreporter/internal/logger"
	"statreporter/internal/snapshot"
	"statreporter/internal/source"
)

func init() {
	_ = logger.Init(logger.Config{Level: "disabled"})
}

var testTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testSnapshot(host string) *snapshot.Snapshot {
	snap := snapshot.Empty(testTime, source.Disabled, "collector not registered")
	snap.General.Hostname = source.OK(host)
	return snap
}
