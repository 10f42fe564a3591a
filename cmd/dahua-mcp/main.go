package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wilhg/dahua-mcp/pkg/config"
	"github.com/wilhg/dahua-mcp/pkg/dahua"
	"github.com/wilhg/dahua-mcp/pkg/gateway"
	"github.com/wilhg/dahua-mcp/pkg/mcpserver"
	"github.com/wilhg/dahua-mcp/pkg/otel"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	var showVersion bool
	var trace bool

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.BoolVar(&trace, "trace", config.ParseBool(os.Getenv("DAHUA_TRACE"), false), "write spans to stderr")
	flag.Parse()

	if showVersion {
		fmt.Printf("dahua-mcp %s (commit=%s, date=%s)\n", version, commit, date)
		return
	}

	// stdout belongs to the stdio transport.
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdown, err := otel.Init(ctx, otel.Config{
		ServiceName:    "dahua-mcp",
		ServiceVersion: version,
		Debug:          trace,
	})
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	records := make([]dahua.Record, 0, len(settings.Cameras))
	for _, c := range settings.Cameras {
		records = append(records, dahua.Record{
			Name:      c.Name,
			Host:      c.Host,
			Port:      c.Port,
			Username:  c.Username,
			Password:  c.Password,
			VerifySSL: c.VerifySSL,
		})
	}
	registry, err := dahua.NewRegistry(records, settings.Timeout)
	if err != nil {
		log.Fatalf("cameras: %v", err)
	}

	var limiter *gateway.Limiter
	if settings.RateLimitEnabled {
		limiter = gateway.NewLimiter(settings.RateLimitMax, settings.RateLimitWindow)
	}
	rules := gateway.Rules{
		ReadOnly:     settings.ReadOnly,
		DisabledTags: settings.DisabledTags,
	}
	gw := gateway.New(registry, rules, limiter)

	srv, err := mcpserver.New(gw, gateway.Catalog(registry), "dahua-mcp", version)
	if err != nil {
		log.Fatalf("server: %v", err)
	}

	transport := config.LoadTransport()
	log.Printf("dahua-mcp %s: %d cameras from %s, %d tools, transport=%s",
		version, len(settings.Cameras), settings.ConfigPath, len(srv.ToolNames()), transport.Type)
	if settings.ReadOnly {
		log.Printf("read-only mode: write tools are not registered")
	}

	switch transport.Type {
	case config.TransportStdio:
		err = srv.RunStdio(ctx)
	case config.TransportHTTP, config.TransportSSE:
		err = srv.RunHTTP(ctx, transport)
	default:
		log.Fatalf("unknown MCP_TRANSPORT %q", transport.Type)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatalf("transport: %v", err)
	}
}
