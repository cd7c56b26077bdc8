package main

import (
	"os"

	"github.com/niksmo/menu-admin/pkg/sigctx"
)

func main() {
	ctx, cancel := sigctx.NotifyContext()
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportErr(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
