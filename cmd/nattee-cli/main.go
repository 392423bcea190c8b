package main

import (
	"natteescraper/cmd/nattee-cli/commands"
	"natteescraper/lib/serviceutil"
	"natteescraper/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "nattee-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}
