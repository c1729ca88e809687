package main

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/hoshiyaar/paathshala/core"
	"github.com/hoshiyaar/paathshala/core/curriculum"
	"github.com/hoshiyaar/paathshala/core/learner"
	"github.com/hoshiyaar/paathshala/storage/database/dummy"
)

var learnerRepo *dummy.LearnerRepo

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	conf := &core.Config{}
	conf.Curriculum.DefaultBoard = "CBSE"
	conf.Curriculum.DefaultClass = "5"
	conf.Curriculum.DefaultSubject = "Science"

	currSvc := curriculum.NewService(dummy.NewCurriculumRepo(), conf, nil)
	learnerRepo = dummy.NewLearnerRepo()
	return &commandLine{
		conf:       conf,
		currSvc:    currSvc,
		learnerSvc: learner.NewService(learnerRepo, currSvc, nil, nil),
	}
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "seed", args: []string{"seed"}},
		{name: "addadmin: no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "addadmin: no password", args: []string{"addadmin", "-username", "root"}, wantErr: errHelp},
		{name: "addadmin", args: []string{"addadmin", "-username", "root"}, pwd: "s3cr3t"},
		{name: "addadmin: duplicate", args: []string{"addadmin", "-username", "root"}, pwd: "s3cr3t", wantErr: learner.ErrUsernameExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := learnerRepo.GetLearner(context.Background(), learner.Filter{Username: "root"})
	if err != nil {
		t.Fatalf("GetLearner() failed, %v", err)
	}
	if !usr.IsAdmin() {
		t.Error("expected an admin account")
	}
	if err = usr.CheckPassword("s3cr3t"); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}
}
