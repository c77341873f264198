package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"Hacknox/models"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

const (
	HackathonIDKey     = "hackathon_id"
	TeamIDKey          = "team_id"
	HackathonIDHeader  = "X-Hackathon-Id"
	maxPeekedBodyBytes = 1 << 20
)

// ScopeLookup reports whether userID may act inside hackathonID. The returned
// value is stored under ScopeCheck.Attach when non-empty.
type ScopeLookup func(ctx context.Context, userID, hackathonID uint32) (attach uint32, ok bool, err error)

// ScopeCheck resolves the acting hackathon and verifies the caller's
// relationship to it.
type ScopeCheck struct {
	Role         models.UserRole
	Lookup       ScopeLookup
	Attach       string
	AllowMissing bool
	// FromParam names a path parameter consulted before every other source.
	FromParam string
	Denied    string
}

func (s ScopeCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Role != "" && CurrentRole(c) != s.Role {
			utils.Abort(c, utils.NewForbidden("insufficient permissions"))
			return
		}
		hackathonID, found, err := ResolveHackathonID(c, s.FromParam)
		if err != nil {
			utils.Abort(c, err)
			return
		}
		if !found {
			if s.AllowMissing {
				c.Next()
				return
			}
			utils.Abort(c, utils.NewValidation("hackathon_id is required"))
			return
		}

		attach, ok, err := s.Lookup(c.Request.Context(), CurrentUserID(c), hackathonID)
		if err != nil {
			utils.Abort(c, utils.Wrap(err, "resolve hackathon scope"))
			return
		}
		if !ok {
			msg := s.Denied
			if msg == "" {
				msg = "no access to this hackathon"
			}
			utils.Abort(c, utils.NewForbidden(msg))
			return
		}
		c.Set(HackathonIDKey, hackathonID)
		if s.Attach != "" {
			c.Set(s.Attach, attach)
		}
		c.Next()
	}
}

// RequireHackathonOwner admits admins linked to the hackathon.
func RequireHackathonOwner(fromParam string) gin.HandlerFunc {
	return ScopeCheck{
		Role:      models.RoleAdmin,
		FromParam: fromParam,
		Denied:    "you do not own this hackathon",
		Lookup: func(ctx context.Context, userID, hackathonID uint32) (uint32, bool, error) {
			ok, err := services.IsHackathonOwner(ctx, userID, hackathonID)
			return 0, ok, err
		},
	}.Handler()
}

// RequireAdminScope is RequireHackathonOwner for listings that may run unscoped.
func RequireAdminScope() gin.HandlerFunc {
	return ScopeCheck{
		Role:         models.RoleAdmin,
		AllowMissing: true,
		Denied:       "you do not own this hackathon",
		Lookup: func(ctx context.Context, userID, hackathonID uint32) (uint32, bool, error) {
			ok, err := services.IsHackathonOwner(ctx, userID, hackathonID)
			return 0, ok, err
		},
	}.Handler()
}

// RequireJudgeScope admits judges holding at least one assignment in the hackathon.
func RequireJudgeScope(allowMissing bool) gin.HandlerFunc {
	return ScopeCheck{
		Role:         models.RoleJudge,
		AllowMissing: allowMissing,
		Denied:       "you are not assigned to this hackathon",
		Lookup: func(ctx context.Context, userID, hackathonID uint32) (uint32, bool, error) {
			ok, err := services.HasJudgeAssignment(ctx, userID, hackathonID)
			return 0, ok, err
		},
	}.Handler()
}

// RequireParticipantScope admits members of a team in the hackathon and attaches team_id.
func RequireParticipantScope(allowMissing bool) gin.HandlerFunc {
	return ScopeCheck{
		Role:         models.RoleParticipant,
		Attach:       TeamIDKey,
		AllowMissing: allowMissing,
		Denied:       "you are not on a team in this hackathon",
		Lookup:       services.FindParticipantTeamID,
	}.Handler()
}

// RequireAudienceScope admits team members and rostered judges of the
// hackathon. Participants get team_id attached.
func RequireAudienceScope(allowMissing bool) gin.HandlerFunc {
	return ScopeCheck{
		Attach:       TeamIDKey,
		AllowMissing: allowMissing,
		Denied:       "you are not taking part in this hackathon",
		Lookup:       services.InHackathonAudience,
	}.Handler()
}

// ResolveHackathon stores the hackathon id when the request carries one and
// rejects malformed ids. Nothing is checked about the caller.
func ResolveHackathon() gin.HandlerFunc {
	return func(c *gin.Context) {
		hackathonID, found, err := ResolveHackathonID(c, "")
		if err != nil {
			utils.Abort(c, err)
			return
		}
		if found {
			c.Set(HackathonIDKey, hackathonID)
		}
		c.Next()
	}
}

// ResolveHackathonID looks in the path parameter (when named), the query string,
// the request body and finally the X-Hackathon-Id header.
func ResolveHackathonID(c *gin.Context, fromParam string) (uint32, bool, error) {
	candidates := make([]func() string, 0, 4)
	if fromParam != "" {
		candidates = append(candidates, func() string { return c.Param(fromParam) })
	}
	candidates = append(candidates,
		func() string {
			if v := c.Query("hackathon_id"); v != "" {
				return v
			}
			return c.Query("hackathonId")
		},
		func() string { return bodyHackathonID(c) },
		func() string { return c.GetHeader(HackathonIDHeader) },
	)

	for _, source := range candidates {
		raw := strings.TrimSpace(source())
		if raw == "" {
			continue
		}
		id, err := ParseID(raw)
		if err != nil {
			return 0, false, utils.NewValidation("invalid hackathon_id")
		}
		return id, true, nil
	}
	return 0, false, nil
}

// bodyHackathonID peeks at a JSON body (restoring it for the handler) or reads
// the form field of url-encoded and multipart bodies.
func bodyHackathonID(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Method == "GET" {
		return ""
	}
	contentType := c.ContentType()
	switch {
	case contentType == gin.MIMEJSON:
		data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekedBodyBytes))
		c.Request.Body = io.NopCloser(bytes.NewReader(data))
		if err != nil || len(data) == 0 {
			return ""
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(data, &fields) != nil {
			return ""
		}
		for _, key := range []string{"hackathon_id", "hackathonId"} {
			if v, ok := fields[key]; ok {
				s := strings.Trim(string(v), `"`)
				if s != "null" {
					return s
				}
			}
		}
	case contentType == gin.MIMEPOSTForm || contentType == gin.MIMEMultipartPOSTForm:
		if v := c.PostForm("hackathon_id"); v != "" {
			return v
		}
		return c.PostForm("hackathonId")
	}
	return ""
}

// ParseID parses a positive 32-bit id.
func ParseID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, utils.NewValidation("invalid id")
	}
	return uint32(id), nil
}

// HackathonID returns the hackathon resolved by a scope middleware.
func HackathonID(c *gin.Context) (uint32, bool) {
	v, ok := c.Get(HackathonIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint32)
	return id, ok
}

func TeamID(c *gin.Context) uint32 {
	v, _ := c.Get(TeamIDKey)
	id, _ := v.(uint32)
	return id
}
