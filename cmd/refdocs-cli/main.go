package main

import (
	"refdocs-backend/cmd/refdocs-cli/commands"
	"refdocs-backend/lib/serviceutil"
	"refdocs-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "refdocs-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
