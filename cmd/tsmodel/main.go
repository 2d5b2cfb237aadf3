package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/kishek/ts-model-toolkit/cmd/tsmodel/internal/check"
	"github.com/kishek/ts-model-toolkit/cmd/tsmodel/internal/gen"
)

type CLI struct {
	Verbose  bool `help:"Log per-file progress." short:"v"`
	JSONLogs bool `help:"Log as JSON." name:"json-logs"`

	Version     VersionCmd        `cmd:"" help:"Print version information."`
	Gql         gen.GraphQLCmd    `cmd:"" help:"Generate a GraphQL schema from the model."`
	Guards      gen.GuardsCmd     `cmd:"" help:"Generate isX type guards."`
	Builders    gen.BuildersCmd   `cmd:"" help:"Generate XBuilder classes."`
	Identifiers gen.IdentifierCmd `cmd:"" help:"Generate XIdentifier classes."`
	Gen         gen.ConfigCmd     `cmd:"" help:"Generate every output configured in a tsmodel.yaml, .toml or .json file."`
	Check       check.Cmd         `cmd:"" help:"Parse the model and report problems without generating files."`
	IR          check.IRCmd       `cmd:"" name:"ir" help:"Print the parsed model as JSON."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("tsmodel"),
		kong.Description("Generate GraphQL schemas, type guards, builders and identifiers from a TypeScript model."),
		kong.UsageOnError(),
	)

	logger, err := newLogger(cli.Verbose, cli.JSONLogs)
	kctx.FatalIfErrorf(err)
	defer logger.Sync() //nolint:errcheck

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(logger)
	kctx.FatalIfErrorf(err)
}

// newLogger logs to stderr so stdout stays free for command output.
func newLogger(verbose, jsonLogs bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	if jsonLogs {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		return config.Build()
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.DisableStacktrace = true
	config.DisableCaller = true
	return config.Build()
}
