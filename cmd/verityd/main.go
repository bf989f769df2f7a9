package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	"github.com/verity-social/verity/classify"
	"github.com/verity-social/verity/fame"
	"github.com/verity-social/verity/models"
	"github.com/verity-social/verity/server"
	"github.com/verity-social/verity/util/cliutil"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "verityd",
		Usage:   "social network fame service",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/verityd/verity.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "info|debug|warn|error",
			Value:   "info",
			EnvVars: []string{"VERITY_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "text|json",
			Value:   "text",
			EnvVars: []string{"VERITY_LOG_FORMAT"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
		seedCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the HTTP API",
			Value:   ":8700",
			EnvVars: []string{"VERITY_BIND"},
		},
		&cli.StringFlag{
			Name:     "jwt-secret",
			Usage:    "signing key for session tokens",
			EnvVars:  []string{"VERITY_JWT_SECRET"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "classifier-host",
			Usage:   "base URL of the truth classification service; empty uses the built-in keyword classifier",
			EnvVars: []string{"VERITY_CLASSIFIER_HOST"},
		},
		&cli.StringFlag{
			Name:    "classifier-token",
			EnvVars: []string{"VERITY_CLASSIFIER_TOKEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger, err := cliutil.SetupSlog(cctx.String("log-level"), cctx.String("log-format"))
		if err != nil {
			return err
		}

		db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
		if err != nil {
			return err
		}

		var classifier classify.Classifier
		if host := cctx.String("classifier-host"); host != "" {
			classifier = classify.NewRemoteClassifier(host, cctx.String("classifier-token"))
		} else {
			logger.Warn("no classifier host configured, using built-in keyword classifier")
			classifier = classify.NewKeywordClassifier(defaultKeywordRules)
		}

		srv, err := server.NewServer(db, classifier, []byte(cctx.String("jwt-secret")))
		if err != nil {
			return err
		}

		logger.Info("starting verityd", "bind", cctx.String("bind"))
		return srv.RunAPI(cctx.String("bind"))
	},
}

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "create tables and the reference fame ladder",
	Action: func(cctx *cli.Context) error {
		if _, err := cliutil.SetupSlog(cctx.String("log-level"), cctx.String("log-format")); err != nil {
			return err
		}

		db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
		if err != nil {
			return err
		}
		if err := models.MigrateAll(db); err != nil {
			return err
		}
		if err := fame.SeedLevels(db, fame.DefaultLevels()); err != nil {
			return err
		}

		fmt.Println("database ready")
		return nil
	},
}

// fallback classifier table for local development; production deployments
// point classifier-host at the real classification service
var defaultKeywordRules = []classify.KeywordRule{
	{Area: "Health", Tokens: []string{"vitamin", "vaccine", "diet"}, Rating: 1},
	{Area: "Health", Tokens: []string{"miracle", "detox"}, Rating: -1},
	{Area: "Finance", Tokens: []string{"market", "inflation", "bonds"}, Rating: 1},
	{Area: "Finance", Tokens: []string{"guaranteed", "doubling"}, Rating: -1},
	{Area: "Climate", Tokens: []string{"emissions", "warming"}, Rating: 1},
	{Area: "Climate", Tokens: []string{"hoax"}, Rating: -1},
}
