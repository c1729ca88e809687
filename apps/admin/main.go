package main

import (
	"log"
	"os"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/storage/database"
	"github.com/hoshiyaar/paathshala/storage/database/gormrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf.Database, conf.Debug)
	errAndDie(err)

	currSvc := curriculum.NewService(gormrepos.NewCurriculumRepo(db), conf, nil)

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db,
		currSvc:    currSvc,
		learnerSvc: learner.NewService(gormrepos.NewLearnerRepo(db), currSvc, nil, nil),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
