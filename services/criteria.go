package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"Hacknox/utils"
)

// Criteria is a flat key -> value equality filter over a UserContext.
// A nil Criteria matches everyone.
type Criteria map[string]string

// UserContext is the per-user data announcements are targeted against.
type UserContext map[string]string

func normalizeKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(k), "_", ""))
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NewUserContext builds a context. Empty values are left out so that criteria
// naming them exclude the user.
func NewUserContext(role, city, college, category string, teamID uint32) UserContext {
	uc := UserContext{}
	set := func(k, v string) {
		if v = normalizeValue(v); v != "" {
			uc[normalizeKey(k)] = v
		}
	}
	set("role", role)
	set("city", city)
	set("college", college)
	set("category", category)
	if teamID != 0 {
		set("teamId", strconv.FormatUint(uint64(teamID), 10))
	}
	return uc
}

// ParseCriteria accepts null, {}, [] (broadcast) or a flat object whose values
// are strings, numbers or booleans.
func ParseCriteria(raw []byte) (Criteria, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) > 0 {
			return nil, utils.NewValidation("target_criteria must be an object")
		}
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, utils.NewValidation("target_criteria must be an object")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, utils.NewValidation("target_criteria must be valid JSON")
	}
	if len(fields) == 0 {
		return nil, nil
	}
	c := make(Criteria, len(fields))
	for k, v := range fields {
		key := normalizeKey(k)
		if key == "" {
			return nil, utils.NewValidation("target_criteria keys must not be empty")
		}
		switch val := v.(type) {
		case string:
			c[key] = normalizeValue(val)
		case json.Number:
			f, err := val.Float64()
			if err != nil {
				return nil, utils.NewValidation("target_criteria has an invalid number for " + k)
			}
			c[key] = strconv.FormatFloat(f, 'f', -1, 64)
		case bool:
			c[key] = strconv.FormatBool(val)
		default:
			return nil, utils.NewValidation("target_criteria values must be strings, numbers or booleans")
		}
	}
	return c, nil
}

// Matches requires every criterion to equal the context value. A key the
// context lacks excludes the user.
func (c Criteria) Matches(uc UserContext) bool {
	for k, want := range c {
		got, ok := uc[k]
		if !ok {
			return false
		}
		if got == want {
			continue
		}
		// numbers compare by canonical form: "7" matches 7.0
		gf, gerr := strconv.ParseFloat(got, 64)
		wf, werr := strconv.ParseFloat(want, 64)
		if gerr != nil || werr != nil || gf != wf {
			return false
		}
	}
	return true
}
