package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"

	. "github.com/trezcool/masomo-finance/apps/api/echo"
	"github.com/trezcool/masomo-finance/core"
	"github.com/trezcool/masomo-finance/core/finance"
	logsvc "github.com/trezcool/masomo-finance/services/logger"
	inmemdb "github.com/trezcool/masomo-finance/storage/database/inmem"
	"github.com/trezcool/masomo-finance/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	token    string
	wantCode int
	wantData []byte
}

func newConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	return conf
}

func newServer(conf *core.Config, board *finance.Board, translator ut.Translator) *Server {
	return NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logsvc.NewNopLogger(),
		Board:      board,
		Translator: translator,
	})
}

// setup returns a server over a loaded board seeded with the school fixture.
func setup(t *testing.T, conf *core.Config) (*Server, *inmemdb.DB) {
	repo, db := testutil.NewRepository(t)
	testutil.Seed(repo, testutil.School())
	validate, translator := testutil.NewTranslatedValidate()
	board := testutil.LoadBoard(t, repo, validate)
	return newServer(conf, board, translator), db
}

// setupNotLoaded returns a server whose board was never refreshed.
func setupNotLoaded(t *testing.T, conf *core.Config) *Server {
	repo, _ := testutil.NewRepository(t)
	validate, translator := testutil.NewTranslatedValidate()
	board := finance.NewBoard(finance.NewService(repo, testutil.DefaultCatalog(t), validate))
	return newServer(conf, board, translator)
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, isAdmin bool, roles ...string) string {
	token, err := GenerateToken(conf, NewClaims(conf, "u1", "jdoe", isAdmin, roles...))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
