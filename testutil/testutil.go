package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"Hacknox/database"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestJWTSecret = "test-secret"

var dbSeq atomic.Int64

// SetupTestDB opens a private in-memory SQLite database with the full schema
// and installs it as database.DB.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:hacknox_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if err := database.MigrateTables(db); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	database.DB = db
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// SetupTestRedis starts a miniredis server and installs a client as database.RDB.
func SetupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.RDB.Close() })
	return mr
}

// Setup prepares the database, Redis and the JWT secret.
func Setup(t *testing.T) (*gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	utils.InitJWT(TestJWTSecret, time.Hour)
	return SetupTestDB(t), SetupTestRedis(t)
}

// CreateUser inserts a verified user whose password is "password123".
func CreateUser(t *testing.T, db *gorm.DB, role models.UserRole, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:          strings.Split(email, "@")[0],
		Email:         email,
		Password:      "password123",
		Role:          role,
		EmailVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// CreateHackathon inserts an active hackathon owned by ownerID.
func CreateHackathon(t *testing.T, db *gorm.DB, ownerID uint32, slug string, maxTeamSize int) *models.Hackathon {
	t.Helper()
	h := &models.Hackathon{
		Name:           slug,
		Slug:           slug,
		Status:         models.HackathonStatusActive,
		MaxTeamSize:    maxTeamSize,
		ScoringWeights: datatypes.NewJSONType(models.DefaultScoringWeights()),
		CreatedBy:      ownerID,
	}
	if err := db.Create(h).Error; err != nil {
		t.Fatalf("Failed to create hackathon: %v", err)
	}
	if err := db.Create(&models.HackathonAdmin{HackathonID: h.ID, AdminID: ownerID}).Error; err != nil {
		t.Fatalf("Failed to link hackathon owner: %v", err)
	}
	return h
}

// CreateTeam inserts a team led by leader with the given extra members.
func CreateTeam(t *testing.T, db *gorm.DB, hackathonID uint32, name string, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()
	team := &models.Team{
		HackathonID: hackathonID,
		Name:        name,
		JoinCode:    fmt.Sprintf("T%05d", dbSeq.Add(1)%100000),
		LeaderID:    leader.ID,
	}
	if err := db.Omit("Leader", "Members").Create(team).Error; err != nil {
		t.Fatalf("Failed to create team %s: %v", name, err)
	}
	AddMember(t, db, team, leader, models.TeamRoleLeader)
	for _, m := range members {
		AddMember(t, db, team, m, models.TeamRoleMember)
	}
	return team
}

func AddMember(t *testing.T, db *gorm.DB, team *models.Team, user *models.User, role models.TeamMemberRole) {
	t.Helper()
	m := &models.TeamMember{
		TeamID:      team.ID,
		UserID:      user.ID,
		HackathonID: team.HackathonID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	if err := db.Omit("User").Create(m).Error; err != nil {
		t.Fatalf("Failed to add member %d: %v", user.ID, err)
	}
}

// AddJudge puts judge on the hackathon roster.
func AddJudge(t *testing.T, db *gorm.DB, hackathonID uint32, judge *models.User) {
	t.Helper()
	if err := db.Omit("Judge").Create(&models.HackathonJudge{HackathonID: hackathonID, JudgeID: judge.ID}).Error; err != nil {
		t.Fatalf("Failed to add judge %d: %v", judge.ID, err)
	}
}

// Token issues a session token for user.
func Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(*user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// MakeRequest sends a JSON request through handler. An empty token sends no
// Authorization header.
func MakeRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// AssertStatus fails the test when the recorder status differs.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// Envelope is the decoded response wrapper.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// AssertJSON decodes the envelope and, when data is non-nil, its data field.
func AssertJSON(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response: %v (%s)", err, rr.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode response data: %v", err)
		}
	}
	return env
}
