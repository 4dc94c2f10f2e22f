package tools

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"- Blacksmith.", "blacksmith"},
		{"• Owes the   guild 50g!", "owes the guild 50g"},
		{"* Has a scar", "has a scar"},
		{"   ", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLine(tt.in), tt.in)
	}
}

func TestMergeDossier(t *testing.T) {
	got := mergeDossier("- Blacksmith\n- Red beard", "blacksmith.\n- Lives by the river\n\n???")
	assert.Equal(t, "- Blacksmith\n- Red beard\n- Lives by the river", got)
}

func TestMergeDossier_Cap(t *testing.T) {
	var existing []string
	for i := 0; i < 14; i++ {
		existing = append(existing, fmt.Sprintf("fact %d", i))
	}
	got := mergeDossier(strings.Join(existing, "\n"), "new one\nnew two\nnew three")
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, MaxDossierLines)
	assert.Equal(t, "fact 0", lines[0])
	assert.Equal(t, "new one", lines[14])
}

func TestUpsertMemory_CreateAndMerge(t *testing.T) {
	d := NewDispatcher(nil)

	res := d.Dispatch(call(ToolUpsertMemory, `{"category":"Character","name":" Marcus ","description":"- Blacksmith"}`), world.New(""))
	require.True(t, res.Applied)
	assert.Equal(t, "Memory saved: [Character] Marcus", res.Text)
	require.Len(t, res.Snapshot.Memories, 1)
	assert.True(t, res.Snapshot.Memories[0].Enabled)

	res = d.Dispatch(call(ToolUpsertMemory, `{"category":"Character","name":"marcus","description":"- blacksmith\n- Owes money","isEnabled":false}`), res.Snapshot)
	require.True(t, res.Applied)
	assert.Equal(t, "Memory updated: [Character] Marcus. Facts merged.", res.Text)

	m := res.Snapshot.Memories[0]
	require.Len(t, res.Snapshot.Memories, 1)
	assert.Equal(t, "- Blacksmith\n- Owes money", m.Description)
	assert.False(t, m.Enabled)
}

func TestUpsertMemory_CategoryScopesName(t *testing.T) {
	d := NewDispatcher(nil)
	snap := world.New("")
	snap.Memories = append(snap.Memories, world.NewMemoryItem(world.CategoryPlace, "Marcus", "A village", true))

	res := d.Dispatch(call(ToolUpsertMemory, `{"category":"Character","name":"Marcus","description":"A man"}`), snap)
	require.True(t, res.Applied)
	assert.Len(t, res.Snapshot.Memories, 2)
}

func TestUpsertMemory_Rejections(t *testing.T) {
	d := NewDispatcher(nil)
	snap := world.New("")

	res := d.Dispatch(call(ToolUpsertMemory, `{"category":"Gossip","name":"x","description":"y"}`), snap)
	assert.False(t, res.Applied)
	assert.Equal(t, "Error: Invalid category 'Gossip'. Must be one of: Character, Place, Item, Lore, Other", res.Text)

	res = d.Dispatch(call(ToolUpsertMemory, `{"category":"Lore","name":"  ","description":"y"}`), snap)
	assert.False(t, res.Applied)
	assert.Equal(t, "Error: upsert_memory missing required fields.", res.Text)
}
