package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_ShippedFileIsClean(t *testing.T) {
	reg, err := LoadRegistry(repoRegistryPath(t))
	require.NoError(t, err)
	assert.Empty(t, reg.Check())
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	reg, err := Parse([]byte(`{"activities":[
		{"id":"a","taskType":"t1","displayName":"A","category":"search","timeout":"later","errorCodes":["NOPE"]},
		{"id":"a","taskType":"t2","outputSchema":{"type":7}}
	]}`))
	require.NoError(t, err)

	problems := reg.Check()
	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.Error())
	}
	assert.Len(t, problems, 6, msgs)
	assert.Contains(t, msgs, `activity a: bad timeout "later"`)
	assert.Contains(t, msgs, "activity a: unknown error code NOPE")
	assert.Contains(t, msgs, `duplicate activity id "a"`)
}

func TestCheck_Empty(t *testing.T) {
	assert.Len(t, (&ActivityRegistry{}).Check(), 1)
}

func TestSetAndSave(t *testing.T) {
	reg, err := LoadRegistry(repoRegistryPath(t))
	require.NoError(t, err)

	require.NoError(t, reg.Set("relax-vehicle-filters", "status", "planned"))
	require.NoError(t, reg.Set("relax-vehicle-filters", "timeout", "7s"))
	require.NoError(t, reg.Set("relax-vehicle-filters", "retries", "2"))
	assert.Error(t, reg.Set("relax-vehicle-filters", "timeout", "-1s"))
	assert.Error(t, reg.Set("relax-vehicle-filters", "retries", "many"))
	assert.Error(t, reg.Set("relax-vehicle-filters", "taskType", "x"))
	assert.Error(t, reg.Set("missing", "status", "implemented"))

	path := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, reg.Save(path))

	reloaded, err := LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reloaded.Find("relax-vehicle-filters")
	require.True(t, ok)
	assert.Equal(t, "planned", a.ImplementationStatus)
	assert.Equal(t, "7s", a.Timeout)
	assert.Equal(t, 2, a.Retries)
	assert.Len(t, reloaded.Implemented(), 2)
}
