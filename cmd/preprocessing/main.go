package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"lintang/routedescription/pkg/kv"
	"lintang/routedescription/pkg/logger"
	"lintang/routedescription/pkg/osmparser"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

var (
	mapFile = flag.String("f", "solo_jogja.osm.pbf", "openstreeetmap file yang di import ke database")
	dbPath  = flag.String("db", "routedescriptionDB", "directory pebble database tujuan")
	debug   = flag.Bool("debug", false, "log level debug")
)

func main() {
	flag.Parse()
	zapLog, err := logger.New(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer zapLog.Sync()
	sugar := zapLog.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := os.Open(*mapFile)
	if err != nil {
		sugar.Fatalf("open %s: %v", *mapFile, err)
	}
	defer f.Close()

	tc := osmparser.DefaultTypeConfig()
	osmParser := osmparser.NewOSMParser(tc, osmparser.WithLogger(zapLog))
	m, err := osmParser.Parse(ctx, f)
	if err != nil {
		sugar.Fatalf("parse %s: %v", *mapFile, err)
	}

	db, err := pebble.Open(*dbPath, &pebble.Options{})
	if err != nil {
		sugar.Fatalf("open pebble db %s: %v", *dbPath, err)
	}
	kvDB, err := kv.NewKVDB(db, kv.WithLogger(zapLog))
	if err != nil {
		sugar.Fatalf("open kv db: %v", err)
	}
	defer kvDB.Close()

	if err := kvDB.ImportMap(ctx, m.TypeConfig, m.Ways, m.Areas, m.Nodes); err != nil {
		sugar.Fatalf("import map: %v", err)
	}
	zapLog.Info("map imported",
		zap.String("file", *mapFile),
		zap.String("db", *dbPath),
		zap.Int("ways", len(m.Ways)),
		zap.Int("areas", len(m.Areas)),
		zap.Int("nodes", len(m.Nodes)))
}
