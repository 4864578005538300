package main

import (
	"log"
	"os"

	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/user"
	"github.com/nexuslms/nexus/storage/kv"
	filekv "github.com/nexuslms/nexus/storage/kv/file"
	inmemkv "github.com/nexuslms/nexus/storage/kv/inmem"
	sqlkv "github.com/nexuslms/nexus/storage/kv/sqldb"
	"github.com/nexuslms/nexus/storage/store"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up storage
	backend, cleanup, migrateFunc, err := setUpBackend(conf)
	errAndDie(err)
	defer cleanup()

	db := store.New(backend)

	// start CLI
	cli := commandLine{
		usrSvc:      user.NewService(db),
		resetter:    db,
		migrateFunc: migrateFunc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func setUpBackend(conf *core.Config) (kv.Backend, func(), func() error, error) {
	noop := func() {}
	noMigrations := func() error { return nil }

	switch conf.Storage.Backend {
	case "memory":
		return inmemkv.Open(), noop, noMigrations, nil

	case "sql":
		db, err := sqlkv.Open(conf)
		if err != nil {
			return nil, noop, noMigrations, err
		}
		if err = sqlkv.Ping(db); err != nil {
			_ = db.Close()
			return nil, noop, noMigrations, err
		}
		migrate := func() error { return sqlkv.Migrate(db, conf) }
		return sqlkv.NewBackend(db), func() { _ = db.Close() }, migrate, nil

	default: // "file"
		backend, err := filekv.Open(conf.Storage.FileDir)
		return backend, noop, noMigrations, err
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
