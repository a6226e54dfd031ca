package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sauron/internal/devserver"
)

func serveCmd() *cobra.Command {
	var (
		dir  string
		addr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a compiled wasm bundle with live reload",
		Long: `Serve a directory containing index.html, main.wasm and
wasm_exec.js, injecting a live-reload client so the browser refreshes
itself the moment a recompiled main.wasm lands in that directory.

Examples:
  sauron serve --dir ./public
  sauron serve --dir ./public --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(dir, addr)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "public", "Directory to serve")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Address to listen on")

	return cmd
}

func runServe(dir, addr string) error {
	fmt.Print(banner)
	info("serving %s on %s", dir, addr)
	success("open http://localhost%s in a browser", addr)

	srv := devserver.New(devserver.Options{Dir: dir, Addr: addr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.Start(ctx)
}
