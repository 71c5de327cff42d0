package main

import (
	"context"
	"fmt"

	"github.com/RacoonMediaServer/rms-annotator/internal/config"
	"github.com/RacoonMediaServer/rms-annotator/internal/db"
	"github.com/RacoonMediaServer/rms-annotator/internal/driver"
	"github.com/RacoonMediaServer/rms-annotator/internal/lock"
	"github.com/RacoonMediaServer/rms-annotator/internal/model"
	"github.com/RacoonMediaServer/rms-annotator/internal/poll"
	"github.com/RacoonMediaServer/rms-annotator/internal/processor"
	"github.com/RacoonMediaServer/rms-annotator/internal/selection"
	"github.com/RacoonMediaServer/rms-annotator/internal/service"
	"github.com/RacoonMediaServer/rms-annotator/internal/snapshot"
	"github.com/urfave/cli/v2"
	"go-micro.dev/v4"
	"go-micro.dev/v4/logger"

	// Plugins
	_ "github.com/go-micro/plugins/v4/registry/etcd"
)

var Version = "v0.0.0"

const serviceName = "rms-annotator"

func main() {
	logger.Infof("%s %s", serviceName, Version)
	defer logger.Info("DONE.")

	useDebug := false

	srv := micro.NewService(
		micro.Name(serviceName),
		micro.Version(Version),
		micro.Flags(
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"debug"},
				Usage:       "debug log level",
				Value:       false,
				Destination: &useDebug,
			},
		),
	)

	srv.Init(
		micro.Action(func(context *cli.Context) error {
			configFile := fmt.Sprintf("/etc/rms/%s.json", serviceName)
			if context.IsSet("config") {
				configFile = context.String("config")
			}
			return config.Load(configFile)
		}),
	)

	if useDebug {
		_ = logger.Init(logger.WithLevel(logger.DebugLevel))
	}

	cfg := config.Config()

	database, err := db.Connect(cfg.Database)
	if err != nil {
		logger.Fatalf("Connect to database failed: %s", err)
	}
	logger.Info("Connected to database")

	if err = database.SetMetaInfo(context.Background(), model.MetaInfo{Version: Version}); err != nil {
		logger.Warnf("Store meta info failed: %s", err)
	}

	proc := processor.New(cfg.Processor, cfg.Device)
	poller := poll.New()
	guard := lock.NewGuard()
	snap := snapshot.New(database, nil)
	sel := selection.New()
	pub := micro.NewEvent(driver.EventsTopic, srv.Client())

	annotation := driver.NewAnnotationDriver(driver.AnnotationSettings{
		Processor: proc,
		Providers: database,
		Snapshot:  snap,
		Selection: sel,
		Poller:    poller,
		Guard:     guard,
		Tunables:  cfg.Annotation,
		Publisher: pub,
	})

	vectorization := driver.NewVectorizationDriver(driver.VectorizationSettings{
		Processor: proc,
		Providers: database,
		Snapshot:  snap,
		Selection: sel,
		Poller:    poller,
		Guard:     guard,
		Publisher: pub,
	})

	// a job may have survived a restart of this service
	if err = annotation.Initialize(context.Background()); err != nil {
		logger.Warnf("Recover annotation job failed: %s", err)
	}

	jobsService := service.NewJobs(service.JobsSettings{
		Annotation:    annotation,
		Vectorization: vectorization,
	})

	libraryService := service.NewLibrary(service.LibrarySettings{
		Database:  database,
		Snapshot:  snap,
		Selection: sel,
	})

	if err = micro.RegisterHandler(srv.Server(), jobsService); err != nil {
		logger.Fatalf("Register jobs service failed: %s", err)
	}

	if err = micro.RegisterHandler(srv.Server(), libraryService); err != nil {
		logger.Fatalf("Register library service failed: %s", err)
	}

	if err = srv.Run(); err != nil {
		logger.Fatalf("Run service failed: %s", err)
	}

	annotation.Close()
	vectorization.Close()
	poller.Close()
}
