package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/broady/nullinfo"
	"github.com/broady/nullinfo/internal/config"
)

// stdout is where reports are written.
var stdout io.Writer = os.Stdout

// stderr receives log output.
var stderr io.Writer = os.Stderr

type CLI struct {
	Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Resolve ResolveCmd `cmd:"" help:"Resolve members of fixture documents (.yaml, .json, .msgpack)."`
	Inspect InspectCmd `cmd:"" help:"Resolve members of Go packages from source."`
	Serve   ServeCmd   `cmd:"" help:"Serve resolution of fixture documents over HTTP."`
	Convert ConvertCmd `cmd:"" help:"Convert a fixture document between formats."`
}

// Globals are flags accepted by every command.
type Globals struct {
	Config   string `help:"Path to the config file (default: ./nullinfo.toml if present)." type:"path"`
	LogLevel string `help:"Log level: debug, info, warn or error." name:"log-level"`
}

// ResolveFlags control how resolved members are reported.
type ResolveFlags struct {
	Format         string   `help:"Output format: text or json." short:"f"`
	Color          string   `help:"Colorize text output: auto, always or never."`
	Member         []string `help:"Only report these members (Type.Member). Repeatable." short:"m"`
	MaxDepth       int      `help:"Maximum resolution depth." name:"max-depth"`
	ContextNotNull bool     `help:"Apply not-null context defaults, not only nullable ones." name:"context-not-null"`
	ParamAttrs     bool     `help:"Read a parameter's own annotation before its method's." name:"parameter-annotations"`
	Out            string   `help:"Write one JSON report per member below this directory instead of printing." type:"path"`
}

// options returns the flag values as a config layer.
func (f ResolveFlags) options(g *Globals) config.File {
	return config.File{
		Format:         f.Format,
		Color:          f.Color,
		LogLevel:       g.LogLevel,
		MaxDepth:       f.MaxDepth,
		ContextNotNull: f.ContextNotNull,
		Members:        f.Member,

		ParameterAnnotations: f.ParamAttrs,
	}
}

// settings layers flags over the config file over the defaults.
func (g *Globals) settings(flags config.File) (config.File, error) {
	file, err := config.Load(g.Config)
	if err != nil {
		return config.File{}, err
	}
	s := flags.Merge(file).Merge(config.Defaults())
	if err := s.Validate(); err != nil {
		return config.File{}, err
	}
	return s, nil
}

func newLogger(s config.File) *slog.Logger {
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: s.Level()}))
}

func newResolver(s config.File, logger *slog.Logger) *nullinfo.Resolver {
	r := nullinfo.NewResolver().WithLogger(logger).WithMaxDepth(s.MaxDepth)
	if s.ContextNotNull {
		r = r.WithContextNotNull()
	}
	if s.ParameterAnnotations {
		r = r.WithParameterAnnotations()
	}
	return r
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("nullinfo"),
		kong.Description("Resolve nullability metadata of members into per-position trees."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
