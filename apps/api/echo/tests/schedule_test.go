package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/LukaszKielczewski66/fightclub/apps/api/echo"
	"github.com/LukaszKielczewski66/fightclub/core/account"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

func Test_api_health(t *testing.T) {
	f := setup(t)

	runHTTPTests(t, f.app, []httpTest{
		{name: "ok", method: http.MethodGet, path: "/api/health", wantCode: http.StatusOK, wantData: []byte(`{"status":"ok"}`)},
	})
}

func Test_api_auth(t *testing.T) {
	f := setup(t)
	path := "/api/schedule/my-bookings"

	expiredToken, err := tokenFor(f.member, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := GenerateToken(NewClaims(f.member, "FightClub", time.Hour), []byte("other-secret"))
	require.NoError(t, err)

	aliasClaims := NewClaims(f.member, "FightClub", time.Hour)
	aliasClaims.Role = "user"
	aliasToken, err := GenerateToken(aliasClaims, secretKey)
	require.NoError(t, err)

	badRoleClaims := NewClaims(f.member, "FightClub", time.Hour)
	badRoleClaims.Role = "coach"
	badRoleToken, err := GenerateToken(badRoleClaims, secretKey)
	require.NoError(t, err)

	runHTTPTests(t, f.app, []httpTest{
		{name: "no token", method: http.MethodGet, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "garbage token", method: http.MethodGet, path: path, token: "lol", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "foreign secret", method: http.MethodGet, path: path, token: otherSecret, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "expired", method: http.MethodGet, path: path, token: expiredToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "unknown role", method: http.MethodGet, path: path, token: badRoleToken, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errInvalidToken)},
		{name: "user alias", method: http.MethodGet, path: path, token: aliasToken, wantCode: http.StatusOK, wantData: []byte(`{"items":[]}`)},
	})
}

func Test_scheduleAPI_sessionList(t *testing.T) {
	f := setup(t)
	s1 := f.createSession(t, f.trainer, "Morning BJJ", now.Add(24*time.Hour), 10)
	s2 := f.createSession(t, f.other, "MMA Sparring", now.Add(48*time.Hour), 10)
	f.createSession(t, f.trainer, "Later", now.Add(10*24*time.Hour), 10)

	path := func(from, to string) string {
		v := make(url.Values)
		if from != "" {
			v.Add("from", from)
		}
		if to != "" {
			v.Add("to", to)
		}
		return "/api/schedule/sessions?" + v.Encode()
	}
	token := getToken(t, f.member)
	rangeRequired := []byte(`{"from":"from and to are required","to":"from and to are required"}`)

	runHTTPTests(t, f.app, []httpTest{
		{name: "no range", method: http.MethodGet, path: path("", ""), token: token, wantCode: http.StatusBadRequest, wantData: rangeRequired},
		{name: "from only", method: http.MethodGet, path: path("2024-05-01", ""), token: token, wantCode: http.StatusBadRequest, wantData: rangeRequired},
		{
			name: "malformed from", method: http.MethodGet, path: path("yesterday", "2024-05-05"), token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"from":"must be an ISO-8601 date or time"}`),
		},
		{
			name: "in range", method: http.MethodGet, path: path("2024-05-01", "2024-05-05T00:00:00Z"), token: token,
			wantCode: http.StatusOK, wantData: items(t, []session.View{s1.View(), s2.View()}),
		},
		{
			name: "empty range", method: http.MethodGet, path: path("2024-06-01", "2024-06-02"), token: token,
			wantCode: http.StatusOK, wantData: []byte(`{"items":[]}`),
		},
		{name: "anonymous", method: http.MethodGet, path: path("2024-05-01", "2024-05-05"), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})
}

func Test_scheduleAPI_sessionCreate(t *testing.T) {
	f := setup(t)
	path := "/api/schedule/sessions"
	f.createSession(t, f.trainer, "Taken", time.Date(2024, 5, 8, 18, 0, 0, 0, time.UTC), 10)

	body := func(startHour, endHour int, trainerID string) []byte {
		return marchallObj(t, map[string]interface{}{
			"name":      "Evening BJJ",
			"type":      "BJJ",
			"level":     "beginner",
			"capacity":  12,
			"weekStart": "2024-05-06",
			"weekday":   4,
			"startHour": startHour,
			"endHour":   endHour,
			"endMinute": 30,
			"trainerId": trainerID,
		})
	}

	runHTTPTests(t, f.app, []httpTest{
		{name: "member", method: http.MethodPost, path: path, body: body(18, 19, ""), token: getToken(t, f.member), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "empty body", method: http.MethodPost, path: path, body: []byte(`{}`), token: getToken(t, f.trainer),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"name":"this field is required","type":"this field is required","level":"this field is required",
				"capacity":"this field is required","weekday":"this field is required",
				"startHour":"this field is required","endHour":"this field is required"
			}`),
		},
		{
			name: "unknown category", method: http.MethodPost, path: path, token: getToken(t, f.trainer),
			body:     []byte(`{"name":"Judo","type":"Judo","level":"beginner","capacity":5,"weekday":1,"startHour":10,"endHour":11}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"type":"type must be one of BJJ, MMA, Cross"}`),
		},
		{
			name: "end before start", method: http.MethodPost, path: path, body: body(20, 19, ""), token: getToken(t, f.trainer),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"endHour":"end must be after start"}`),
		},
		{
			name: "foreign trainer", method: http.MethodPost, path: path, body: body(18, 19, f.other.ID), token: getToken(t, f.trainer),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"cannot schedule sessions for another trainer"}`),
		},
		{
			name: "unknown trainer", method: http.MethodPost, path: path, body: body(18, 19, "nobody"), token: getToken(t, f.admin),
			wantCode: http.StatusNotFound, wantData: []byte(`{"error":"trainer not found"}`),
		},
		{
			name: "member as trainer", method: http.MethodPost, path: path, body: body(18, 19, f.member.ID), token: getToken(t, f.admin),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"trainerId":"account is not a trainer"}`),
		},
	})

	t.Run("trainer schedules own session", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, f.trainer), body(18, 19, ""))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var view session.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.NotEmpty(t, view.ID)
		assert.Equal(t, "Evening BJJ", view.Name)
		assert.Equal(t, session.CategoryBJJ, view.Category)
		assert.Equal(t, f.trainer.Name, view.TrainerName)
		assert.True(t, time.Date(2024, 5, 9, 18, 0, 0, 0, time.UTC).Equal(view.StartAt))
		assert.True(t, time.Date(2024, 5, 9, 19, 30, 0, 0, time.UTC).Equal(view.EndAt))
		assert.Equal(t, 0, view.Reserved)
		assert.Empty(t, view.ParticipantIDs)
	})

	t.Run("trainer overlap", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, f.trainer), body(18, 19, ""))
		f.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: []byte(`{"error":"the trainer already has a session at this time"}`),
		}, rec)
	})

	t.Run("admin schedules for another trainer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, f.admin), body(18, 19, f.other.ID))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var view session.View
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, f.other.Name, view.TrainerName)
	})
}

func Test_scheduleAPI_trainerSessionList(t *testing.T) {
	f := setup(t)
	past := f.createSession(t, f.trainer, "Yesterday", now.Add(-24*time.Hour), 10)
	s1 := f.createSession(t, f.trainer, "Tomorrow", now.Add(24*time.Hour), 10)
	s2 := f.createSession(t, f.other, "Other", now.Add(48*time.Hour), 10)
	s3 := f.createSession(t, f.trainer, "Next week", now.Add(7*24*time.Hour), 10)

	path := "/api/schedule/my-sessions"
	runHTTPTests(t, f.app, []httpTest{
		{name: "member", method: http.MethodGet, path: path, token: getToken(t, f.member), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "upcoming", method: http.MethodGet, path: path, token: getToken(t, f.trainer),
			wantCode: http.StatusOK, wantData: items(t, []session.View{s1.View(), s3.View()}),
		},
		{
			name: "range", method: http.MethodGet, path: path + "?from=2024-04-29&to=2024-05-03", token: getToken(t, f.trainer),
			wantCode: http.StatusOK, wantData: items(t, []session.View{past.View(), s1.View()}),
		},
		{
			name: "trainer cannot look at others", method: http.MethodGet, path: path + "?trainerId=" + f.other.ID, token: getToken(t, f.trainer),
			wantCode: http.StatusOK, wantData: items(t, []session.View{s1.View(), s3.View()}),
		},
		{
			name: "admin override", method: http.MethodGet, path: path + "?trainerId=" + f.other.ID, token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: items(t, []session.View{s2.View()}),
		},
	})
}

func Test_scheduleAPI_booking(t *testing.T) {
	f := setup(t)
	sess := f.createSession(t, f.trainer, "Small group", now.Add(24*time.Hour), 1)
	path := "/api/schedule/sessions/" + sess.ID + "/booking"
	memberToken := getToken(t, f.member)

	booked := sess
	booked.Participants = []string{f.member.ID}

	runHTTPTests(t, f.app, []httpTest{
		{name: "book", method: http.MethodPost, path: path, token: memberToken, wantCode: http.StatusOK, wantData: marchallObj(t, booked.View())},
		{name: "book twice", method: http.MethodPost, path: path, token: memberToken, wantCode: http.StatusConflict, wantData: []byte(`{"error":"already booked"}`)},
		{name: "full", method: http.MethodPost, path: path, token: getToken(t, f.member2), wantCode: http.StatusConflict, wantData: []byte(`{"error":"no seats left"}`)},
		{
			name: "my bookings", method: http.MethodGet, path: "/api/schedule/my-bookings", token: memberToken,
			wantCode: http.StatusOK, wantData: items(t, []session.View{booked.View()}),
		},
		{name: "cancel", method: http.MethodDelete, path: path, token: memberToken, wantCode: http.StatusOK, wantData: marchallObj(t, sess.View())},
		{name: "cancel twice", method: http.MethodDelete, path: path, token: memberToken, wantCode: http.StatusConflict, wantData: []byte(`{"error":"not booked"}`)},
		{
			name: "unknown session", method: http.MethodPost, path: "/api/schedule/sessions/nope/booking", token: memberToken,
			wantCode: http.StatusNotFound, wantData: []byte(`{"error":"session not found"}`),
		},
		{
			name: "unknown session cancel", method: http.MethodDelete, path: "/api/schedule/sessions/nope/booking", token: memberToken,
			wantCode: http.StatusNotFound, wantData: []byte(`{"error":"session not found"}`),
		},
		{name: "anonymous", method: http.MethodPost, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
	})
}

func tokenFor(acc account.Account, ttl time.Duration) (string, error) {
	return GenerateToken(NewClaims(acc, "FightClub", ttl), secretKey)
}
