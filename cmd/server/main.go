package main

import (
	"context"
	"os"

	"github.com/photolog-app/photolog/file_store"
	"github.com/photolog-app/photolog/server"
	"github.com/photolog-app/photolog/server/api"
	"github.com/photolog-app/photolog/server/auth"
	"github.com/photolog-app/photolog/server/middlewares"
	"github.com/photolog-app/photolog/stream"
	. "github.com/photolog-app/photolog/utils"
	"github.com/photolog-app/photolog/utils/dotenv"
	. "github.com/photolog-app/photolog/utils/flag"
	. "github.com/photolog-app/photolog/utils/log"
)

func init() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	InitTracer()
	InitProfiler()

	Log.Info("api server initialized")
}

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	ctx := context.Background()

	bus := stream.NewBus()
	defer bus.Close()

	reporter := stream.NewReporter(stream.NewDogStatsdClient(), bus)
	go reporter.Run(ctx)

	bucket := file_store.DevS3PhotoBucket
	if IsProdEnv() {
		bucket = file_store.ProdS3PhotoBucket
	}
	files, err := file_store.NewS3FileStore(bucket)
	if err != nil {
		Log.Fatal("fail to create file store: ", err)
	}
	defer files.CleanUp()

	deepLinks, err := GetDeepLinkStore(ctx)
	if err != nil {
		Log.Fatal("fail to connect to redis: ", err)
	}

	middlewares.Setup()
	a := api.NewAPI(db, bus, files, auth.NewService(middlewares.CognitoClient(), db), deepLinks)

	router := server.NewRouter(a, !ByPassAuth)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	Log.Info("api server starts up")
	router.Run(addr)
}
