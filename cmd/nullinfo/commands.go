package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/broady/nullinfo/fixture"
	"github.com/broady/nullinfo/internal/config"
	"github.com/broady/nullinfo/internal/sink"
	"github.com/broady/nullinfo/middleware"
	"github.com/broady/nullinfo/provider"
	"github.com/broady/nullinfo/server"
)

type ResolveCmd struct {
	ResolveFlags

	Files []string `arg:"" help:"Fixture documents to load." type:"path"`
}

func (c *ResolveCmd) Run(g *Globals) error {
	s, err := g.settings(c.options(g))
	if err != nil {
		return err
	}
	logger := newLogger(s)

	catalog, err := fixture.LoadAll(c.Files...)
	if err != nil {
		return err
	}
	logger.Debug("loaded fixtures", "files", len(c.Files), "members", len(catalog.Members))

	return emit(context.Background(), logger, catalog, emitOptions{
		settings: s,
		resolver: newResolver(s, logger),
		out:      c.Out,
	})
}

type InspectCmd struct {
	ResolveFlags

	Packages []string `arg:"" help:"Go packages to load (patterns as accepted by go list)."`
	Type     []string `help:"Only extract these type names. Repeatable." short:"t"`
	Dir      string   `help:"Directory to load packages from (default: current directory)." short:"C" type:"existingdir"`
}

func (c *InspectCmd) Run(g *Globals) error {
	s, err := g.settings(c.options(g))
	if err != nil {
		return err
	}
	logger := newLogger(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &provider.SourceProvider{}
	catalog, err := p.BuildCatalog(ctx, provider.SourceInputOptions{
		Packages:  c.Packages,
		RootTypes: c.Type,
		Dir:       c.Dir,
	})
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	logger.Debug("loaded packages", "packages", c.Packages, "members", len(catalog.Members))

	return emit(ctx, logger, catalog, emitOptions{
		settings: s,
		resolver: newResolver(s, logger),
		out:      c.Out,
	})
}

type ServeCmd struct {
	Files          []string `arg:"" help:"Fixture documents to serve." type:"path"`
	Addr           string   `help:"Address to listen on (default: localhost:8080)." short:"a"`
	AllowOrigin    []string `help:"Enable CORS for this origin. Repeatable; \"*\" allows any origin." name:"allow-origin"`
	MaxDepth       int      `help:"Maximum resolution depth." name:"max-depth"`
	ContextNotNull bool     `help:"Apply not-null context defaults, not only nullable ones." name:"context-not-null"`
	ParamAttrs     bool     `help:"Read a parameter's own annotation before its method's." name:"parameter-annotations"`
}

func (c *ServeCmd) Run(g *Globals) error {
	s, err := g.settings(config.File{
		LogLevel:       g.LogLevel,
		MaxDepth:       c.MaxDepth,
		ContextNotNull: c.ContextNotNull,
		Serve:          config.Serve{Addr: c.Addr, AllowOrigins: c.AllowOrigin},

		ParameterAnnotations: c.ParamAttrs,
	})
	if err != nil {
		return err
	}
	logger := newLogger(s)

	catalog, err := fixture.LoadAll(c.Files...)
	if err != nil {
		return err
	}
	logWarnings(logger, catalog)

	srv := server.New(catalog, newResolver(s, logger)).WithLogger(logger)
	if len(s.Serve.AllowOrigins) > 0 {
		srv = srv.WithCORS(&middleware.CORSConfig{
			AllowOrigins: s.Serve.AllowOrigins,
			MaxAge:       s.Serve.MaxAge,
		})
	}

	ln, err := net.Listen("tcp", s.Serve.Addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "nullinfo: serving %d members on http://%s\n", len(catalog.Members), ln.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, ln)
}

// serve runs hs on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, hs *http.Server, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type ConvertCmd struct {
	In  string `arg:"" help:"Fixture document to read." type:"existingfile"`
	Out string `arg:"" help:"Fixture document to write; the format follows its extension."`
}

func (c *ConvertCmd) Run() error {
	inFormat, err := fixture.FormatOf(c.In)
	if err != nil {
		return err
	}
	outFormat, err := fixture.FormatOf(c.Out)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(c.In)
	if err != nil {
		return err
	}
	doc, err := fixture.Decode(bytes.NewReader(data), inFormat)
	if err != nil {
		return fmt.Errorf("%s: %w", c.In, err)
	}
	if _, err := doc.Catalog(); err != nil {
		return fmt.Errorf("%s: %w", c.In, err)
	}

	var buf bytes.Buffer
	if err := fixture.Encode(&buf, doc, outFormat); err != nil {
		return err
	}
	dir, name := filepath.Split(c.Out)
	if dir == "" {
		dir = "."
	}
	return sink.NewFilesystemSink(dir).WriteFile(context.Background(), name, buf.Bytes())
}
