package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oxidize/oxidize/internal/codegen/generator"
	"github.com/oxidize/oxidize/internal/codegen/meta"
)

// Options are the build-time values shared by every command that runs the
// pipeline.
type Options struct {
	BaseNamespace     string   `help:"Native namespace every generated type lives under" default:"DotNet" env:"OXIDIZE_BASE_NAMESPACE"`
	NativeLibraryName string   `help:"Native library the managed side imports from" default:"OxidizeNative" env:"OXIDIZE_NATIVE_LIBRARY"`
	NonBlittableTypes []string `help:"Comma-separated structs that are always wrapped" sep:"," env:"OXIDIZE_NON_BLITTABLE_TYPES"`
}

func (o Options) metaOptions() meta.Options {
	return meta.Options{
		BaseNamespace:     o.BaseNamespace,
		NativeLibraryName: o.NativeLibraryName,
		NonBlittableTypes: o.NonBlittableTypes,
	}
}

type Generate struct {
	Models []string `arg:"" name:"model" help:"Program model files (json, yaml or toml)"`

	Options `embed:""`

	HeaderDir        string `help:"Directory for generated headers" default:"./generated/include" env:"OXIDIZE_HEADER_DIR"`
	SourceDir        string `help:"Directory for generated native sources" default:"./generated/src" env:"OXIDIZE_SOURCE_DIR"`
	ManagedDir       string `help:"Directory for generated managed sources" default:"./generated/managed" env:"OXIDIZE_MANAGED_DIR"`
	Lang             string `help:"Side to generate: cpp, csharp or 'all'" default:"all" enum:"cpp,csharp,all" env:"OXIDIZE_LANG"`
	WarningsAsErrors bool   `help:"Fail without writing anything if generation produced warnings" env:"OXIDIZE_WARNINGS_AS_ERRORS"`
}

func (g *Generate) config() generator.Config {
	cfg := generator.Config{
		Options: g.metaOptions(),
		Layout: meta.Layout{
			HeaderDir:  g.HeaderDir,
			SourceDir:  g.SourceDir,
			ManagedDir: g.ManagedDir,
		},
		WarningsAsErrors: g.WarningsAsErrors,
	}
	if g.Lang != "all" {
		cfg.Languages = []string{g.Lang}
	}
	return cfg
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting oxidize code generation", "models", len(g.Models), "lang", g.Lang)
	_, err := generator.New(g.config(), logger).Run(ctx, g.Models...)
	return err
}
