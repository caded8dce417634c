package main

import (
	"github.com/photolog-app/photolog/resync"
	. "github.com/photolog-app/photolog/utils"
	"github.com/photolog-app/photolog/utils/dotenv"
	. "github.com/photolog-app/photolog/utils/log"
)

// One-shot counter rebuild, for operators who prefer a terminal over the
// admin endpoint.
func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	report, err := resync.Run(db)
	if err != nil {
		Log.Fatal("resync failed: ", err)
	}

	Log.Info("resync finished: scanned ", report.UsersScanned, " users (", report.UsersChanged,
		" corrected), ", report.PhotosScanned, " photos (", report.PhotosChanged, " corrected)")
}
