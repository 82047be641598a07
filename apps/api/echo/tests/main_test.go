package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/LukaszKielczewski66/fightclub/apps/api/echo"
	"github.com/LukaszKielczewski66/fightclub/core"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
	"github.com/LukaszKielczewski66/fightclub/services/logger"
	"github.com/LukaszKielczewski66/fightclub/storage/database/inmem"
	"github.com/LukaszKielczewski66/fightclub/tests"
)

var (
	secretKey = []byte("test-secret")
	now       = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) // Wednesday

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type fixture struct {
	app      Server
	db       *inmemdb.DB
	accRepo  account.Repository
	sessRepo session.Repository
	attRepo  attendance.Repository

	admin   account.Account
	trainer account.Account
	other   account.Account
	member  account.Account
	member2 account.Account
}

func setup(t *testing.T) *fixture {
	testutil.FreezeTime(t, &session.NowFunc, now)
	testutil.FreezeTime(t, &attendance.NowFunc, now)

	// set up DB & repos
	db := inmemdb.New()
	f := &fixture{
		db:       db,
		accRepo:  inmemdb.NewAccountRepository(db),
		sessRepo: inmemdb.NewSessionRepository(db),
		attRepo:  inmemdb.NewAttendanceRepository(db),
	}
	f.admin = testutil.CreateAccount(t, f.accRepo, "Admin", "admin@club.pl", account.RoleAdmin, true)
	f.trainer = testutil.CreateAccount(t, f.accRepo, "Coach Anna", "anna@club.pl", account.RoleTrainer, true)
	f.other = testutil.CreateAccount(t, f.accRepo, "Coach Marek", "marek@club.pl", account.RoleTrainer, true)
	f.member = testutil.CreateAccount(t, f.accRepo, "Jan", "jan@club.pl", account.RoleMember, true)
	f.member2 = testutil.CreateAccount(t, f.accRepo, "Ola", "ola@club.pl", account.RoleMember, true)

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	logger := logsvc.NewNopLogger()
	accSvc := account.NewService(f.accRepo)
	conflicts := session.NewConflictChecker(f.sessRepo, core.ConflictPolicyTrainer)
	sessSvc := session.NewService(f.sessRepo, accSvc, conflicts, validate, time.UTC, logger)
	attSvc := attendance.NewService(f.attRepo, f.sessRepo, accSvc, attendance.DefaultPastLimit, logger)

	// set up server
	f.app = NewServer(
		&Options{
			TestMode:       true,
			DisableReqLogs: true,
			SecretKey:      string(secretKey),
			AppName:        "FightClub",
		},
		nil, /* shutdown */
		&Deps{
			Logger:        logger,
			Store:         db,
			SessionSvc:    sessSvc,
			AttendanceSvc: attSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
	return f
}

// createSession stores a session of trainer starting at start for an hour.
func (f *fixture) createSession(t *testing.T, trainer account.Account, name string, start time.Time, capacity int,
	participants ...account.Account) session.Session {
	t.Helper()
	ctx := context.Background()
	sess, err := f.sessRepo.CreateSession(ctx, session.Session{
		Name:        name,
		Category:    session.CategoryBJJ,
		Level:       session.LevelBeginner,
		TrainerID:   trainer.ID,
		TrainerName: trainer.Name,
		Capacity:    capacity,
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	for _, p := range participants {
		if sess, err = f.sessRepo.AddParticipant(ctx, sess.ID, p.ID); err != nil {
			t.Fatalf("AddParticipant() failed: %v", err)
		}
	}
	return sess
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, acc account.Account) string {
	token, err := GenerateToken(NewClaims(acc, "FightClub", time.Hour), secretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func items(t *testing.T, objs interface{}) []byte {
	return marchallObj(t, map[string]interface{}{"items": objs})
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
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
