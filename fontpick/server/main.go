// Serve the fontpick client, preview cards and follow rooms.
//
// It starts at the configured port and, if that one is being used, it
// tries the next ones.
package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

const maxPortTries = 100

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	// Only fails on an invalid GOMAXPROCS, the runtime default is kept then.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	h, err := NewHandler(cfg, log)
	if err != nil {
		return err
	}
	ln, err := listen(cfg.Port, log)
	if err != nil {
		return err
	}
	log.Info("listening", "addr", ln.Addr().String(), "dir", cfg.Dir)
	return http.Serve(ln, h)
}

// listen opens the first free port starting at port.
func listen(port int, log *slog.Logger) (net.Listener, error) {
	var err error
	for i := 0; i < maxPortTries; i++ {
		addr := fmt.Sprintf(":%d", port+i)
		var ln net.Listener
		ln, err = net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		log.Warn("port busy", "addr", addr, "err", err)
	}
	return nil, fmt.Errorf("no free port from %d: %w", port, err)
}
