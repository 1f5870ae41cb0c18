package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v3"

	landscaping "github.com/Jt-schofield1/landscaping-website"
	"github.com/Jt-schofield1/landscaping-website/content"
	"github.com/Jt-schofield1/landscaping-website/views"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultConfigPath = "config.yaml"

// loadConfig reads the YAML file at path. A missing default file falls back
// to environment variables; a missing file named explicitly is an error.
func loadConfig(cmd *cli.Command) (landscaping.SiteConfig, error) {
	path := cmd.String("config")
	cfg, err := landscaping.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config") {
		return landscaping.ConfigFromEnv(), nil
	}
	return cfg, err
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Addr = addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := landscaping.New(cfg, views.New(cfg), landscaping.WithStaticDir(cmd.String("static")))
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func slug(_ context.Context, cmd *cli.Command) error {
	title := strings.Join(cmd.Args().Slice(), " ")
	if title == "" {
		return cli.Exit("usage: landscaping slug <title>", 1)
	}
	fmt.Println(content.Slugify(title))
	return nil
}

func printVersion(_ context.Context, _ *cli.Command) error {
	fmt.Printf("landscaping %s\n", version)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "landscaping",
		Usage: "Blog backend for the landscaping business site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address, overrides the config file",
						Sources: cli.EnvVars("ADDR"),
					},
					&cli.StringFlag{
						Name:  "static",
						Usage: "Directory served under /public",
						Value: "public",
					},
				},
			},
			{
				Name:      "slug",
				Usage:     "Print the slug generated for a title",
				ArgsUsage: "<title>",
				Action:    slug,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: printVersion,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Errorf("application error: %v", err)
		os.Exit(1)
	}
}
