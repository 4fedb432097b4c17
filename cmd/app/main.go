package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/thermo/internal"
	pkgconfig "github.com/starford/thermo/pkg/config"
)

var version = "dev"

func temperatureFlag() cli.Flag {
	return &cli.FloatFlag{
		Name:    "temperature",
		Aliases: []string{"t"},
		Usage:   "Temperature in Kelvin (default from config)",
	}
}

// temperature returns the flag value, or nil when it was not given so the
// configured default applies. An explicit 0 is passed on and rejected.
func temperature(cmd *cli.Command) *float64 {
	if !cmd.IsSet("temperature") {
		return nil
	}
	t := cmd.Float("temperature")
	return &t
}

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func eval(ctx context.Context, cmd *cli.Command) error {
	equation := cmd.Args().First()
	if equation == "" {
		return fmt.Errorf("eval: equation argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	}
	if cmd.Bool("json") {
		return internal.EvaluateJSON(ctx, os.Stdout, equation, temperature(cmd), opts...)
	}
	return internal.Evaluate(ctx, os.Stdout, equation, temperature(cmd), opts...)
}

func batch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sum, err := internal.Batch(ctx, cmd.Args().First(), cmd.String("out"), temperature(cmd),
		internal.WithConfig(cfg), internal.WithVersion(version), internal.WithLogOutput(os.Stderr))
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	fmt.Printf("wrote %d reactions to %s (%d skipped)\n", sum.Rows, sum.OutputDir, sum.Skipped)
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol.
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version), internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:    "thermo",
		Usage:   "Reaction thermodynamics: ΔH, ΔS, ΔG and spontaneity from balanced equations",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serve,
			},
			{
				Name:      "eval",
				Usage:     "Evaluate one reaction and print the report",
				ArgsUsage: "EQUATION",
				Flags: []cli.Flag{
					temperatureFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Print the report as JSON"},
				},
				Action: eval,
			},
			{
				Name:      "batch",
				Usage:     "Evaluate a file of reactions and export CSV datasets",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					temperatureFlag(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "data/processed", Usage: "Output directory"},
				},
				Action: batch,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
