package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/nexuslms/nexus/apps/api/echo"
	"github.com/nexuslms/nexus/core"
	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
	emailsvc "github.com/nexuslms/nexus/services/email"
	feedbacksvc "github.com/nexuslms/nexus/services/feedback"
	logsvc "github.com/nexuslms/nexus/services/logger"
	"github.com/nexuslms/nexus/storage/kv"
	filekv "github.com/nexuslms/nexus/storage/kv/file"
	inmemkv "github.com/nexuslms/nexus/storage/kv/inmem"
	sqlkv "github.com/nexuslms/nexus/storage/kv/sqldb"
	"github.com/nexuslms/nexus/storage/store"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	backend, cleanup, err := setUpBackend(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage backend: %v", err), err)
	}
	defer cleanup()

	db := store.New(backend)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	fbSvc := feedbacksvc.NewGeminiService(conf, logger)

	usrSvc := user.NewService(db)
	batchSvc := batch.NewService(db)
	assignSvc := assignment.NewService(db, db)
	subSvc := submission.NewService(db, db, db, db, mailSvc, fbSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	batch.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Validate:      validate,
			Translator:    translator,
			UserSvc:       usrSvc,
			BatchSvc:      batchSvc,
			AssignmentSvc: assignSvc,
			SubmissionSvc: subSvc,
			Resetter:      db,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpBackend opens the kv.Backend selected by the configuration.
func setUpBackend(conf *core.Config) (kv.Backend, func(), error) {
	noop := func() {}

	switch conf.Storage.Backend {
	case "memory":
		return inmemkv.Open(), noop, nil

	case "sql":
		db, err := sqlkv.Open(conf)
		if err != nil {
			return nil, noop, err
		}
		if err = sqlkv.Ping(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		if err = sqlkv.Migrate(db, conf); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return sqlkv.NewBackend(db), func() { _ = db.Close() }, nil

	default: // "file"
		backend, err := filekv.Open(conf.Storage.FileDir)
		return backend, noop, err
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
