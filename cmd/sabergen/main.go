// Command sabergen validates saber declarations and generates the Go code
// that wires them.
//
//	sabergen analyze --source decl/ --manifest saber.manifest.yaml
//	sabergen generate --manifest saber.manifest.yaml --out ./di --package di
//	sabergen build --source decl/ --out ./di
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/junioryono/saber/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
