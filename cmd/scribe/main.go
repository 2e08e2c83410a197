package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/scribe/internal"
	"github.com/starford/scribe/internal/workspace"
	pkgconfig "github.com/starford/scribe/pkg/config"
)

// errSaveFailed marks a save whose outcome was already printed.
var errSaveFailed = errors.New("save failed")

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("SCRIBE_CONFIG_FILE"),
	}
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func save(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("usage: scribe save [options] <file_path>")
	}

	content := cmd.String("content")
	if !cmd.IsSet("content") {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out, err := internal.Save(ctx, workspace.Request{
		Content:  content,
		FilePath: cmd.Args().First(),
		Mode:     workspace.Mode(cmd.String("mode")),
	}, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	fmt.Fprintln(os.Stdout, out.Message())
	if !out.OK() {
		return errSaveFailed
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "scribe",
		Usage:  "Save agent-produced text into a sandboxed workspace over MCP, HTTP or the command line",
		Action: serve,
		Flags:  []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, workspace watcher and live event stream",
				Flags:  []cli.Flag{configFlag()},
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the workspace tools to an MCP client over stdio",
				Flags:  []cli.Flag{configFlag()},
				Action: serveMCP,
			},
			{
				Name:      "save",
				Usage:     "Save content to a workspace file",
				ArgsUsage: "<file_path>",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "content",
						Usage: "Text to save (read from stdin when omitted)",
					},
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "overwrite (w) or append (a)",
						Value:   string(workspace.ModeOverwrite),
					},
				},
				Action: save,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errSaveFailed) {
			slog.Error("application error", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
