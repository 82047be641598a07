package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/LukaszKielczewski66/fightclub/core/attendance"
	"github.com/LukaszKielczewski66/fightclub/core/session"
)

func Test_attendanceAPI(t *testing.T) {
	f := setup(t)
	live := f.createSession(t, f.trainer, "Live BJJ", now.Add(-30*time.Minute), 10, f.member, f.member2)
	past := f.createSession(t, f.trainer, "Two days ago", now.Add(-48*time.Hour), 10, f.member)
	past2 := f.createSession(t, f.trainer, "Yesterday", now.Add(-24*time.Hour), 10)
	otherLive := f.createSession(t, f.other, "Other live", now.Add(-10*time.Minute), 10)
	f.createSession(t, f.trainer, "Tomorrow", now.Add(24*time.Hour), 10)

	trainerToken := getToken(t, f.trainer)
	details := func(s session.Session, canEdit bool, participants ...attendance.Participant) attendance.Details {
		if participants == nil {
			participants = []attendance.Participant{}
		}
		return attendance.Details{Session: s.Summary(), CanEdit: canEdit, Participants: participants}
	}
	jan := func(st attendance.Status) attendance.Participant {
		return attendance.Participant{ID: f.member.ID, Name: f.member.Name, Status: st}
	}
	ola := func(st attendance.Status) attendance.Participant {
		return attendance.Participant{ID: f.member2.ID, Name: f.member2.Name, Status: st}
	}

	runHTTPTests(t, f.app, []httpTest{
		// listing
		{name: "member", method: http.MethodGet, path: "/api/attendance/active", token: getToken(t, f.member), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "active", method: http.MethodGet, path: "/api/attendance/active", token: trainerToken,
			wantCode: http.StatusOK,
			wantData: items(t, []attendance.Details{details(live, true, jan(attendance.StatusAbsent), ola(attendance.StatusAbsent))}),
		},
		{
			name: "active for another trainer", method: http.MethodGet, path: "/api/attendance/active?trainerId=" + f.other.ID, token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: items(t, []attendance.Details{details(otherLive, true)}),
		},
		{
			name: "past", method: http.MethodGet, path: "/api/attendance/past", token: trainerToken,
			wantCode: http.StatusOK, wantData: items(t, []session.Summary{past2.Summary(), past.Summary()}),
		},
		{
			name: "past limited", method: http.MethodGet, path: "/api/attendance/past?limit=1", token: trainerToken,
			wantCode: http.StatusOK, wantData: items(t, []session.Summary{past2.Summary()}),
		},
		{
			name: "past bad limit", method: http.MethodGet, path: "/api/attendance/past?limit=lol", token: trainerToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"limit":"must be an integer"}`),
		},

		// details
		{
			name: "details", method: http.MethodGet, path: "/api/attendance/" + past.ID, token: trainerToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, details(past, false, jan(attendance.StatusAbsent))),
		},
		{
			name: "details of another trainer", method: http.MethodGet, path: "/api/attendance/" + otherLive.ID, token: trainerToken,
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"no access to this session"}`),
		},
		{
			name: "details as admin", method: http.MethodGet, path: "/api/attendance/" + otherLive.ID, token: getToken(t, f.admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, details(otherLive, true)),
		},
		{
			name: "details unknown", method: http.MethodGet, path: "/api/attendance/nope", token: trainerToken,
			wantCode: http.StatusNotFound, wantData: []byte(`{"error":"session not found"}`),
		},

		// updates
		{
			name: "update", method: http.MethodPatch, path: "/api/attendance/" + live.ID, token: trainerToken,
			body: marchallObj(t, map[string]interface{}{"updates": []map[string]string{
				{"userId": f.member.ID, "status": "absent"},
				{"userId": "stranger", "status": "present"},
				{"userId": f.member2.ID, "status": "late"},
				{"userId": f.member.ID, "status": "present"},
			}}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, details(live, true, jan(attendance.StatusPresent), ola(attendance.StatusAbsent))),
		},
		{
			name: "update persisted", method: http.MethodGet, path: "/api/attendance/" + live.ID, token: trainerToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, details(live, true, jan(attendance.StatusPresent), ola(attendance.StatusAbsent))),
		},
		{
			name: "update without items", method: http.MethodPatch, path: "/api/attendance/" + live.ID, token: trainerToken,
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: []byte(`{"updates":"this field is required"}`),
		},
		{
			name: "update ended session", method: http.MethodPatch, path: "/api/attendance/" + past.ID, token: trainerToken,
			body:     marchallObj(t, map[string]interface{}{"updates": []map[string]string{{"userId": f.member.ID, "status": "present"}}}),
			wantCode: http.StatusConflict, wantData: []byte(`{"error":"attendance is editable only during the session"}`),
		},
		{
			name: "update another trainer's session", method: http.MethodPatch, path: "/api/attendance/" + otherLive.ID, token: trainerToken,
			body:     marchallObj(t, map[string]interface{}{"updates": []map[string]string{{"userId": f.member.ID, "status": "present"}}}),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"no access to this session"}`),
		},
		{
			name: "anonymous", method: http.MethodGet, path: "/api/attendance/active",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
	})
}
