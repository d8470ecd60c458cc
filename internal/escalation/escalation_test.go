package escalation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"convo-insights-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(agents ...string) types.ConversationRow {
	return types.ConversationRow{IssueKey: "CS-1", AgentList: agents, Agent: agents[0]}
}

func TestClassifyTier(t *testing.T) {
	roles := NewRoleMapping(map[string]types.Role{
		"ann":  types.RoleTier1,
		"bea":  types.RoleTier1,
		"carl": types.RoleTier2,
	})

	c := Classify(row("bot", "ann", "bea", "carl"), roles, MetricTier)
	assert.True(t, c.TierHandoff)
	assert.True(t, c.HandoffAny)
	require.NotNil(t, c.Owner)
	assert.Equal(t, "ann", *c.Owner)
	assert.True(t, c.Escalated())

	c = Classify(row("carl", "ann"), roles, MetricTier)
	assert.False(t, c.TierHandoff)
	assert.True(t, c.HandoffAny)
	assert.Nil(t, c.Owner)
	assert.False(t, c.Escalated())
}

func TestClassifyUnmappedAgentCannotOwnTier(t *testing.T) {
	roles := NewRoleMapping(map[string]types.Role{"carl": types.RoleTier2})

	c := Classify(row("stranger", "carl"), roles, MetricTier)
	assert.False(t, c.TierHandoff)
	assert.Nil(t, c.Owner)

	c = Classify(row("stranger", "carl"), roles, MetricHandoff)
	assert.True(t, c.HandoffAny)
	require.NotNil(t, c.Owner)
	assert.Equal(t, "stranger", *c.Owner)
}

func TestClassifySingleAgent(t *testing.T) {
	c := Classify(row("ann"), RoleMapping{}, MetricHandoff)
	assert.False(t, c.HandoffAny)
	assert.Nil(t, c.Owner)

	c = Classify(row(types.UnassignedAgent), RoleMapping{}, MetricHandoff)
	assert.False(t, c.HandoffAny)
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric(" Handoff ")
	require.NoError(t, err)
	assert.Equal(t, MetricHandoff, m)

	_, err = ParseMetric("vertical")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMetric))
}

func TestRoleMappingNameKey(t *testing.T) {
	roles := NewRoleMapping(map[string]types.Role{"Ｊｏｓé Díaz": types.RoleTier2})
	assert.Equal(t, types.RoleTier2, roles.Role("josé díaz"))
	assert.Equal(t, types.RoleNonAgent, roles.Role("someone else"))
	assert.Equal(t, types.RoleNonAgent, RoleMapping{}.Role("anyone"))
}

func TestReadRoles(t *testing.T) {
	csv := strings.Join([]string{
		"user_id,display_name,port_role",
		"712020:abc,Ann Agent,tier1",
		",Carl Senior,TIER2",
		"712020:zzz,Ghost,NONE",
	}, "\n")

	roles, err := ReadRoles(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, types.RoleTier1, roles.Role("712020:abc"))
	assert.Equal(t, types.RoleTier1, roles.Role("ann agent"))
	assert.Equal(t, types.RoleTier2, roles.Role("Carl Senior"))
	assert.Equal(t, types.RoleNonAgent, roles.Role("Ghost"))
	assert.Equal(t, 1, roles.Len())
}

func TestReadRolesMissingHeaders(t *testing.T) {
	_, err := ReadRoles(strings.NewReader("id,role\n1,TIER1\n"))
	require.Error(t, err)
}

func TestLoadRolesMissingFile(t *testing.T) {
	roles, err := LoadRoles(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, roles.Len())
}

func TestLoadRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.csv")
	require.NoError(t, os.WriteFile(path, []byte("user_id,display_name,port_role\nu1,Ann,TIER1\n"), 0o600))

	roles, err := LoadRoles(path)
	require.NoError(t, err)
	assert.Equal(t, types.RoleTier1, roles.Role("u1"))
}
