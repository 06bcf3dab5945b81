// Command voyagectl manages agency records from the terminal.
//
//	voyagectl login -email admin@example.com -password ...
//	export CHINAVOYAGE_TOKEN=...
//	voyagectl requests -status new
//	voyagectl process-request 665f...
//
// The API address comes from -api, then CHINAVOYAGE_API_URL, then
// http://localhost:8080.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "voyagectl:", err)
		os.Exit(1)
	}
}
