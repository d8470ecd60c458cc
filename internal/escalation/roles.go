package escalation

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"convo-insights-go/internal/types"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var requiredRoleHeaders = []string{"user_id", "display_name", "port_role"}

// RoleMapping resolves agents to roles by id first, then by folded display name.
// The zero value maps everyone to NON_AGENT.
type RoleMapping struct {
	byID   map[string]types.Role
	byName map[string]types.Role
}

// NewRoleMapping builds a mapping from agent identifier to role. Each key is
// registered both as an id and as a display name.
func NewRoleMapping(entries map[string]types.Role) RoleMapping {
	m := RoleMapping{
		byID:   make(map[string]types.Role, len(entries)),
		byName: make(map[string]types.Role, len(entries)),
	}
	for agent, role := range entries {
		m.add(agent, agent, role)
	}
	return m
}

func (m *RoleMapping) add(id, name string, role types.Role) {
	if m.byID == nil {
		m.byID = map[string]types.Role{}
		m.byName = map[string]types.Role{}
	}
	if id = strings.TrimSpace(id); id != "" {
		m.byID[id] = role
	}
	if key := NameKey(name); key != "" {
		m.byName[key] = role
	}
}

// Role returns the agent's role, NON_AGENT when unmapped.
func (m RoleMapping) Role(agent string) types.Role {
	if role, ok := m.byID[agent]; ok {
		return role
	}
	if role, ok := m.byName[NameKey(agent)]; ok {
		return role
	}
	return types.RoleNonAgent
}

// Len counts id entries.
func (m RoleMapping) Len() int {
	return len(m.byID)
}

// NameKey is the comparison form of a display name: NFKC, case-folded, trimmed.
func NameKey(name string) string {
	return strings.TrimSpace(cases.Fold().String(norm.NFKC.String(name)))
}

// LoadRoles reads a user_id,display_name,port_role CSV. A missing file yields
// an empty mapping. Rows with an unrecognised role are skipped.
func LoadRoles(path string) (RoleMapping, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return RoleMapping{}, nil
	}
	if err != nil {
		return RoleMapping{}, eris.Wrapf(err, "open roles %s", path)
	}
	defer f.Close()

	m, err := ReadRoles(f)
	if err != nil {
		return RoleMapping{}, eris.Wrapf(err, "read roles %s", path)
	}
	return m, nil
}

// ReadRoles parses role CSV content.
func ReadRoles(r io.Reader) (RoleMapping, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return RoleMapping{}, eris.New("role CSV is empty")
	}
	if err != nil {
		return RoleMapping{}, eris.Wrap(err, "read header")
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, h := range requiredRoleHeaders {
		if _, ok := col[h]; !ok {
			return RoleMapping{}, eris.Errorf("role CSV must contain %s headers", strings.Join(requiredRoleHeaders, ", "))
		}
	}

	cell := func(rec []string, name string) string {
		i := col[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var m RoleMapping
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return RoleMapping{}, eris.Wrap(err, "read row")
		}
		role, ok := types.ParseRole(cell(rec, "port_role"))
		if !ok {
			continue
		}
		m.add(cell(rec, "user_id"), cell(rec, "display_name"), role)
	}
	return m, nil
}
