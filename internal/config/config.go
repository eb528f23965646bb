// Package config loads the nullinfo.toml file read by the nullinfo command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// DefaultPath is the file looked up in the working directory when no
// --config flag is given.
const DefaultPath = "nullinfo.toml"

var validate = validator.New()

// File is the decoded form of nullinfo.toml. Zero values mean "not set".
type File struct {
	Format         string `toml:"format" validate:"omitempty,oneof=text json"`
	Color          string `toml:"color" validate:"omitempty,oneof=auto always never"`
	LogLevel       string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	MaxDepth       int    `toml:"max_depth" validate:"gte=0,lte=4096"`
	ContextNotNull bool   `toml:"context_not_null"`

	// ParameterAnnotations reads a parameter's own annotation before its
	// method's.
	ParameterAnnotations bool `toml:"parameter_annotations"`

	// Members restricts output to these member keys.
	Members []string `toml:"members" validate:"dive,required"`

	Serve Serve `toml:"serve"`
}

// Serve holds the [serve] table.
type Serve struct {
	Addr         string   `toml:"addr" validate:"omitempty,hostname_port"`
	AllowOrigins []string `toml:"allow_origins" validate:"dive,required"`
	MaxAge       int      `toml:"max_age" validate:"gte=0"`
}

// Defaults returns the values used when neither the file nor a flag sets
// an option.
func Defaults() File {
	return File{
		Format:   "text",
		Color:    "auto",
		LogLevel: "warn",
		MaxDepth: 256,
		Serve:    Serve{Addr: "localhost:8080"},
	}
}

// Load decodes and validates the file at path. An empty path loads
// DefaultPath if it exists and returns an empty File otherwise.
// Unknown keys are an error.
func Load(path string) (File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	var f File
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return File{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := validate.Struct(f); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Merge returns f with every zero option replaced by the one from base.
// Booleans are or-ed.
func (f File) Merge(base File) File {
	if f.Format == "" {
		f.Format = base.Format
	}
	if f.Color == "" {
		f.Color = base.Color
	}
	if f.LogLevel == "" {
		f.LogLevel = base.LogLevel
	}
	if f.MaxDepth == 0 {
		f.MaxDepth = base.MaxDepth
	}
	f.ContextNotNull = f.ContextNotNull || base.ContextNotNull
	f.ParameterAnnotations = f.ParameterAnnotations || base.ParameterAnnotations
	if len(f.Members) == 0 {
		f.Members = base.Members
	}
	if f.Serve.Addr == "" {
		f.Serve.Addr = base.Serve.Addr
	}
	if len(f.Serve.AllowOrigins) == 0 {
		f.Serve.AllowOrigins = base.Serve.AllowOrigins
	}
	if f.Serve.MaxAge == 0 {
		f.Serve.MaxAge = base.Serve.MaxAge
	}
	return f
}

// Validate checks f against the same rules as a loaded file.
func (f File) Validate() error {
	return validate.Struct(f)
}

// Level returns the slog level named by LogLevel. Empty means warn.
func (f File) Level() slog.Level {
	switch f.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
