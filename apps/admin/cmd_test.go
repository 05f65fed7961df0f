package main

import (
	"bytes"
	"encoding/base64"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-finance/core"
	emailsvc "github.com/trezcool/masomo-finance/services/email"
	"github.com/trezcool/masomo-finance/tests"
)

func setup(t *testing.T, recipients ...string) (*commandLine, *bytes.Buffer) {
	if err := core.ParseEmailTemplates(); err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Finance.ReportRecipients = recipients

	board, _, _ := testutil.NewBoard(t, testutil.School())
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		conf:    conf,
		board:   board,
		mailSvc: emailsvc.NewConsoleServiceMock(conf),
		out:     out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITest(t *testing.T, cli *commandLine, tt cliTest) {
	args := append([]string{"admin"}, tt.args...)
	err := cli.run(args)
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	var ran []string
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, strings.TrimSpace(command+" "+strings.Join(args, " ")))
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}
	assert.Equal(t, []string{"up", "up-to 1", "down", "status"}, ran)
}

func Test_commandLine_report(t *testing.T) {
	tests := []struct {
		cliTest
		recipients []string
		wantTo     []string
		wantRows   int // csv rows, header excluded
	}{
		{
			cliTest:  cliTest{name: "no recipients", args: []string{"report"}, wantErr: errNoRecipients},
			wantRows: -1,
		},
		{
			cliTest:  cliTest{name: "bad flag", args: []string{"report", "-lol"}, wantErr: errHelp},
			wantRows: -1,
		},
		{
			cliTest:  cliTest{name: "bad recipient", args: []string{"report", "-to", "not an address"}, wantErrStr: "parsing recipient"},
			wantRows: -1,
		},
		{
			cliTest:    cliTest{name: "bad selector", args: []string{"report", "-teacher", "a b"}, wantErrStr: "building dashboard"},
			recipients: []string{"boss@test.cd"},
			wantRows:   -1,
		},
		{
			cliTest:    cliTest{name: "configured recipients", args: []string{"report"}},
			recipients: []string{"boss@test.cd", "Accounting <accounting@test.cd>"},
			wantTo:     []string{"boss@test.cd", "accounting@test.cd"},
			wantRows:   7,
		},
		{
			cliTest:    cliTest{name: "explicit recipients & selector", args: []string{"report", "-teacher", "t1", "-to", "awe@test.cd, "}},
			recipients: []string{"boss@test.cd"},
			wantTo:     []string{"awe@test.cd"},
			wantRows:   3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := setup(t, tt.recipients...)
			emailsvc.ClearSentMessages()

			runCLITest(t, cli, tt.cliTest)
			if tt.wantRows < 0 {
				assert.Empty(t, emailsvc.SentMessages)
				return
			}

			require.Len(t, emailsvc.SentMessages, 1)
			msg := emailsvc.SentMessages[0]

			to := make([]string, 0, len(msg.To))
			for _, addr := range msg.To {
				to = append(to, addr.Address)
			}
			assert.Equal(t, tt.wantTo, to)
			assert.True(t, strings.HasPrefix(msg.Subject, "Finance report "))
			assert.Contains(t, msg.TextContent, "Finance report")

			require.Len(t, msg.Attachments, 1)
			at := msg.Attachments[0]
			assert.Equal(t, "reconciliation.csv", at.Filename)
			csv, err := base64.StdEncoding.DecodeString(at.Content.String())
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
			assert.Len(t, lines, tt.wantRows+1)

			assert.Equal(t, fmt.Sprintf("finance report sent to %d recipient(s)\n", len(tt.wantTo)), out.String())
		})
	}
}

func Test_commandLine_plans(t *testing.T) {
	cli, out := setup(t)

	require.NoError(t, cli.run([]string{"admin", "plans"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"CODE", "LABEL", "PRICE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1_month", "1", "Month", "2400000"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"12_months", "12", "Months", "21600000"}, strings.Fields(lines[4]))
}
