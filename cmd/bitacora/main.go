package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	clientcli "github.com/dmitrijs2005/bitacora/internal/client/cli"
	"github.com/dmitrijs2005/bitacora/internal/client/config"
	"github.com/dmitrijs2005/bitacora/internal/client/models"
	"github.com/dmitrijs2005/bitacora/internal/logging"
)

// withApp builds the client App for one command and closes it afterwards.
func withApp(fn func(ctx context.Context, app *clientcli.App, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig(c)
		if err != nil {
			return err
		}

		logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}

		ctx := c.Context
		app, err := clientcli.NewApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(ctx, app, c)
	}
}

func shell(ctx context.Context, app *clientcli.App, c *cli.Context) error {
	app.Shell(ctx)
	return nil
}

func main() {
	if os.Getenv("BITACORA_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("reading .env: %v", err)
		}
	}

	idCommand := func(name, usage string, fn func(*clientcli.App, context.Context, []string) error) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "<id>",
			Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
				return fn(app, ctx, c.Args().Slice())
			}),
		}
	}

	app := &cli.App{
		Name:   "bitacora",
		Usage:  "terminal client for Bitácora Digital",
		Flags:  config.Flags(),
		Action: withApp(shell),
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "interactive session (default)",
				Action: withApp(shell),
			},
			{
				Name:  "login",
				Usage: "log in and keep the session",
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					return app.Login(ctx)
				}),
			},
			{
				Name:  "logout",
				Usage: "drop the stored session",
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					return app.Logout(ctx)
				}),
			},
			{
				Name:  "whoami",
				Usage: "show the current user",
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					return app.Whoami(ctx)
				}),
			},
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list service logs",
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					return app.List(ctx)
				}),
			},
			{
				Name:  "add",
				Usage: "create a service log",
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					return app.Add(ctx)
				}),
			},
			idCommand("show", "show one service log", (*clientcli.App).Show),
			idCommand("edit", "edit a service log", (*clientcli.App).Edit),
			idCommand("delete", "delete a service log (asks for confirmation)", (*clientcli.App).Delete),
			idCommand("pay", "mark a service log as paid (administrators)", (*clientcli.App).Pay),
			idCommand("link", "print the URL of the service log document", (*clientcli.App).Link),
			idCommand("download", "save the service log document under the export directory", (*clientcli.App).Download),
			{
				Name:  "report",
				Usage: "summary report (administrators)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "cliente", Usage: "client name contains"},
					&cli.StringFlag{Name: "desde", Usage: "from date, YYYY-MM-DD"},
					&cli.StringFlag{Name: "hasta", Usage: "to date, YYYY-MM-DD"},
					&cli.BoolFlag{Name: "pdf", Usage: "also write a PDF under the export directory"},
				},
				Action: withApp(func(ctx context.Context, app *clientcli.App, c *cli.Context) error {
					f := models.ReportFilter{
						ClientContains: c.String("cliente"),
						After:          c.String("desde"),
						Before:         c.String("hasta"),
					}
					return app.RunReport(ctx, f, c.Bool("pdf"))
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
