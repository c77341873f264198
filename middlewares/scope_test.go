package middlewares

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"Hacknox/models"
	"Hacknox/testutil"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoScope reports what the scope middleware attached, plus the body it left behind.
func echoScope(c *gin.Context) {
	hid, ok := HackathonID(c)
	body, _ := io.ReadAll(c.Request.Body)
	c.JSON(http.StatusOK, gin.H{"hackathon_id": hid, "found": ok, "team_id": TeamID(c), "body": string(body)})
}

func TestResolveHackathonIDSources(t *testing.T) {
	r := gin.New()
	r.POST("/scoped/:id", ResolveHackathon(), echoScope)
	r.POST("/path/:id", func(c *gin.Context) {
		id, found, err := ResolveHackathonID(c, "id")
		c.JSON(http.StatusOK, gin.H{"id": id, "found": found, "err": err != nil})
	})

	tests := []struct {
		name     string
		path     string
		body     string
		header   string
		wantBody string
	}{
		{"query", "/scoped/1?hackathon_id=5", "", "", `"hackathon_id":5`},
		{"query alias", "/scoped/1?hackathonId=6", "", "", `"hackathon_id":6`},
		{"json body", "/scoped/1", `{"hackathonId":7}`, "", `"hackathon_id":7`},
		{"header", "/scoped/1", "", "8", `"hackathon_id":8`},
		{"query beats header", "/scoped/1?hackathon_id=3", "", "8", `"hackathon_id":3`},
		{"body is restored", "/scoped/1", `{"hackathon_id":"9","x":1}`, "", `"body":"{\"hackathon_id\":\"9\",\"x\":1}"`},
		{"path first", "/path/4?hackathon_id=5", "", "", `"id":4`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.header != "" {
				req.Header.Set(HackathonIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if !bytes.Contains(rr.Body.Bytes(), []byte(tt.wantBody)) {
				t.Errorf("Expected body to contain %s, got %s", tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestResolveHackathonRejectsMalformedID(t *testing.T) {
	r := gin.New()
	r.GET("/x", ResolveHackathon(), echoScope)
	for _, raw := range []string{"abc", "0", "-1", "99999999999"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x?hackathon_id="+raw, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %q, got %d", raw, rr.Code)
		}
	}
}

func TestScopeChecks(t *testing.T) {
	db, _ := testutil.Setup(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@example.com")
	stranger := testutil.CreateUser(t, db, models.RoleAdmin, "stranger@example.com")
	h := testutil.CreateHackathon(t, db, admin.ID, "hack", 4)
	judge := testutil.CreateUser(t, db, models.RoleJudge, "judge@example.com")
	idle := testutil.CreateUser(t, db, models.RoleJudge, "idle@example.com")
	leader := testutil.CreateUser(t, db, models.RoleParticipant, "lead@example.com")
	loner := testutil.CreateUser(t, db, models.RoleParticipant, "loner@example.com")
	team := testutil.CreateTeam(t, db, h.ID, "Rockets", leader)
	if err := db.Create(&models.JudgeAssignment{JudgeID: judge.ID, TeamID: team.ID, HackathonID: h.ID}).Error; err != nil {
		t.Fatalf("Failed to create assignment: %v", err)
	}
	testutil.AddJudge(t, db, h.ID, idle)

	r := gin.New()
	auth := r.Group("", JWTAuthMiddleware())
	auth.GET("/admin", RequireHackathonOwner(""), echoScope)
	auth.GET("/admin/unscoped", RequireAdminScope(), echoScope)
	auth.GET("/judge", RequireJudgeScope(false), echoScope)
	auth.GET("/participant", RequireParticipantScope(false), echoScope)
	auth.GET("/audience", RequireAudienceScope(false), echoScope)

	q := fmt.Sprintf("?hackathon_id=%d", h.ID)
	tests := []struct {
		name string
		user *models.User
		path string
		want int
	}{
		{"owner", admin, "/admin" + q, http.StatusOK},
		{"other admin", stranger, "/admin" + q, http.StatusForbidden},
		{"judge on admin route", judge, "/admin" + q, http.StatusForbidden},
		{"missing id", admin, "/admin", http.StatusBadRequest},
		{"missing id allowed", admin, "/admin/unscoped", http.StatusOK},
		{"assigned judge", judge, "/judge" + q, http.StatusOK},
		{"unassigned judge", idle, "/judge" + q, http.StatusForbidden},
		{"team member", leader, "/participant" + q, http.StatusOK},
		{"no team", loner, "/participant" + q, http.StatusForbidden},
		{"anonymous", nil, "/participant" + q, http.StatusUnauthorized},
		{"audience member", leader, "/audience" + q, http.StatusOK},
		{"audience rostered judge", idle, "/audience" + q, http.StatusOK},
		{"audience outsider", loner, "/audience" + q, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ""
			if tt.user != nil {
				token = testutil.Token(t, tt.user)
			}
			rr := testutil.MakeRequest(t, r, http.MethodGet, tt.path, nil, token)
			testutil.AssertStatus(t, rr, tt.want)
		})
	}

	rr := testutil.MakeRequest(t, r, http.MethodGet, "/participant"+q, nil, testutil.Token(t, leader))
	var got struct {
		TeamID uint32 `json:"team_id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if got.TeamID != team.ID {
		t.Errorf("Expected team_id %d attached, got %d", team.ID, got.TeamID)
	}
}
