package tests

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/masomo-finance/apps/api/echo"
	"github.com/trezcool/masomo-finance/tests"
)

func TestServer_home(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)

	req, rec := newAuthRequest(http.MethodGet, "/", "")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to "+conf.AppName+" Finance API!", rec.Body.String())
}

func Test_financeApi_access(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)

	admin := getToken(t, conf, true, RoleAdmin)
	accountant := getToken(t, conf, true, RoleAdminAccountant)
	teacher := getToken(t, conf, false, RoleAdmin)
	noRole := getToken(t, conf, true)

	otherConf := newConfig()
	otherConf.SecretKey = "another-secret"
	forged := getToken(t, otherConf, true, RoleAdmin)

	tests := []httpTest{
		{
			name:     "missing token",
			method:   http.MethodGet,
			path:     "/v1/finance/dashboard",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "forged token",
			method:   http.MethodGet,
			path:     "/v1/finance/dashboard",
			token:    forged,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "not admin",
			method:   http.MethodGet,
			path:     "/v1/finance/dashboard",
			token:    teacher,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin without role",
			method:   http.MethodGet,
			path:     "/v1/finance/payments",
			token:    noRole,
			wantCode: http.StatusForbidden,
		},
		{name: "admin", method: http.MethodGet, path: "/v1/finance/dashboard", token: admin, wantCode: http.StatusOK},
		{name: "accountant", method: http.MethodGet, path: "/v1/finance/students", token: accountant, wantCode: http.StatusOK},
		{
			name:     "accountant cannot refresh",
			method:   http.MethodPost,
			path:     "/v1/finance/refresh",
			token:    accountant,
			wantCode: http.StatusForbidden,
		},
		{name: "admin refresh", method: http.MethodPost, path: "/v1/finance/refresh", token: admin, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_financeApi_dashboard(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)
	token := getToken(t, conf, true, RoleAdmin)

	type dashboard struct {
		Selector struct {
			Teacher string `json:"teacher"`
			Student string `json:"student"`
		} `json:"selector"`
		Totals struct {
			Revenue float64 `json:"revenue"`
			Payroll float64 `json:"payroll"`
			Net     float64 `json:"net"`
		} `json:"totals"`
		ClassesCovered int `json:"classes_covered"`
		MonthlyTrend   []struct {
			Month string `json:"month"`
		} `json:"monthly_trend"`
		TopStudents []struct {
			StudentID string `json:"student_id"`
		} `json:"top_students"`
	}

	tests := []struct {
		name        string
		path        string
		wantTeacher string
		wantStudent string
		wantRevenue float64
		wantPayroll float64
		wantClasses int
	}{
		{
			name:        "everything",
			path:        "/v1/finance/dashboard",
			wantTeacher: "all",
			wantStudent: "all",
			wantRevenue: 45600000,
			wantPayroll: 3350000,
			wantClasses: 3,
		},
		{
			name:        "blank selector",
			path:        "/v1/finance/dashboard?teacher=%20&student=",
			wantTeacher: "all",
			wantStudent: "all",
			wantRevenue: 45600000,
			wantPayroll: 3350000,
			wantClasses: 3,
		},
		{
			name:        "one teacher",
			path:        "/v1/finance/dashboard?teacher=t1",
			wantTeacher: "t1",
			wantStudent: "all",
			wantRevenue: 9500000,
			wantPayroll: 2200000,
			wantClasses: 2,
		},
		{
			name:        "one student",
			path:        "/v1/finance/dashboard?student=s3",
			wantTeacher: "all",
			wantStudent: "s3",
			wantRevenue: 12000000,
			wantPayroll: 3350000,
			wantClasses: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got dashboard
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantTeacher, got.Selector.Teacher)
			assert.Equal(t, tt.wantStudent, got.Selector.Student)
			assert.Equal(t, tt.wantRevenue, got.Totals.Revenue)
			assert.Equal(t, tt.wantPayroll, got.Totals.Payroll)
			assert.Equal(t, tt.wantRevenue-tt.wantPayroll, got.Totals.Net)
			assert.Equal(t, tt.wantClasses, got.ClassesCovered)
		})
	}

	t.Run("invalid selector", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"teacher": `must be "all" or a valid id`}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/finance/dashboard?teacher=a%20b", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_financeApi_payments(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)
	token := getToken(t, conf, true, RoleAdminAccountant)

	req, rec := newAuthRequest(http.MethodGet, "/v1/finance/payments?teacher=t1", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got []struct {
		ID         string  `json:"id"`
		PlanCode   string  `json:"plan_code"`
		Custom     bool    `json:"custom"`
		Difference float64 `json:"difference"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)

	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "1_month", got[0].PlanCode)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, "3_months", got[1].PlanCode)
	assert.Equal(t, "p4", got[2].ID)
	assert.True(t, got[2].Custom)
	assert.Zero(t, got[2].Difference)
}

func Test_financeApi_students(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)
	token := getToken(t, conf, true, RoleAdmin)

	tests := []httpTest{
		{
			name:     "one teacher",
			path:     "/v1/finance/students?teacher=t1",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []StudentOption{
				{ID: "s1", Name: "Chloe Ilunga", ClassName: "1A"},
				{ID: "s2", Name: "David Kasongo", ClassName: "1B"},
			}),
		},
		{
			name:     "teacher without students",
			path:     "/v1/finance/students?teacher=nobody",
			wantCode: http.StatusOK,
			wantData: []byte("[]"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_financeApi_plans(t *testing.T) {
	conf := newConfig()
	app, _ := setup(t, conf)
	token := getToken(t, conf, true, RoleAdmin)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, testutil.DefaultCatalog(t).Plans()),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/finance/plans", token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_financeApi_refresh(t *testing.T) {
	conf := newConfig()
	app, db := setup(t, conf)
	token := getToken(t, conf, true, RoleAdmin)

	t.Run("store failure keeps the last snapshot", func(t *testing.T) {
		db.Fail(errors.New("connection refused"))
		defer db.Fail(nil)

		req, rec := newAuthRequest(http.MethodPost, "/v1/finance/refresh", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)}),
		}, rec)

		req, rec = newAuthRequest(http.MethodGet, "/v1/finance/dashboard", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reload picks up changes", func(t *testing.T) {
		db.Reset()

		req, rec := newAuthRequest(http.MethodPost, "/v1/finance/refresh", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/finance/payments", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}, rec)
	})
}

func Test_financeApi_notLoaded(t *testing.T) {
	conf := newConfig()
	app := setupNotLoaded(t, conf)
	token := getToken(t, conf, true, RoleAdmin)

	for _, path := range []string{"/v1/finance/dashboard", "/v1/finance/payments", "/v1/finance/students"} {
		t.Run(path, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusServiceUnavailable,
				wantData: marchallObj(t, httpErr{Error: "finance data is loading, try again shortly"}),
			}, rec)
		})
	}
}
