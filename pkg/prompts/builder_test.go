package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/world"
)

func testSnapshot() *world.Snapshot {
	s := world.New("A rainy port town.")
	s.Messages = append(s.Messages, world.NewAssistantMessage("Welcome."))
	s.Memories = append(s.Memories,
		world.NewMemoryItem(world.CategoryCharacter, "Marcus", "Blacksmith", true),
		world.NewMemoryItem(world.CategoryLore, "Hidden", "Should not appear", false),
	)
	sword := world.NewInventoryItem("Sword", world.ItemWeapon, "", 1)
	sword.Equipped = true
	s.Inventory = append(s.Inventory, sword, world.NewInventoryItem("Rope", world.ItemMaterial, "", 2))
	s.Currency = world.Currency{Gold: 5, Silver: 1, Copper: 12}
	s.Locations = append(s.Locations, world.Location{
		ID:   "loc-1",
		Name: "Smallwood Tavern",
		Zones: []world.Zone{
			{ID: "taproom", Name: "Main Taproom", Description: "Smoky.", Connections: []string{"cellar", "kitchen"}},
			{ID: "cellar", Name: "Cellar", Description: "Damp.", Connections: []string{"taproom"}},
		},
	})
	s.CurrentLocationID = "loc-1"
	s.CurrentZoneID = "taproom"
	return s
}

func TestNew(t *testing.T) {
	builder := New()
	if builder == nil {
		t.Fatal("Expected builder to be created, got nil")
	}
	if builder.historyLimit != DefaultHistoryLimit {
		t.Errorf("Expected default history limit of %d, got %d", DefaultHistoryLimit, builder.historyLimit)
	}
}

func TestBuilder_Build_RequiresSnapshot(t *testing.T) {
	_, err := New().Build()
	if err == nil {
		t.Fatal("Expected error when snapshot is missing")
	}
}

func TestBuilder_SystemOrder(t *testing.T) {
	req, err := New().WithSnapshot(testSnapshot()).Build()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.HasPrefix(req.System, CoreMechanicsPrompt) {
		t.Error("Expected system prompt to start with the core mechanics")
	}
	order := []string{
		"### WORLD SETTING & NARRATIVE\nA rainy port town.",
		"=== HIDDEN MEMORY DATABASE",
		"=== HIDDEN SPATIAL CONTEXT",
		"=== HIDDEN INVENTORY STATE",
	}
	last := -1
	for _, section := range order {
		idx := strings.Index(req.System, section)
		if idx < 0 {
			t.Fatalf("Expected section %q in system prompt", section)
		}
		if idx <= last {
			t.Errorf("Section %q is out of order", section)
		}
		last = idx
	}
	if len(req.Tools) != 7 {
		t.Errorf("Expected 7 tools, got %d", len(req.Tools))
	}
}

func TestBuilder_DisabledMemoriesExcluded(t *testing.T) {
	req, _ := New().WithSnapshot(testSnapshot()).Build()
	if !strings.Contains(req.System, "- [Character] Marcus: Blacksmith") {
		t.Error("Expected enabled memory in context")
	}
	if strings.Contains(req.System, "Hidden") {
		t.Error("Disabled memory leaked into context")
	}
}

func TestMemoryContext_Empty(t *testing.T) {
	if got := MemoryContext(world.New("")); got != "" {
		t.Errorf("Expected no memory section, got %q", got)
	}
}

func TestSpatialContext(t *testing.T) {
	got := SpatialContext(testSnapshot())
	expected := []string{
		"Current Location: Smallwood Tavern\n",
		"Current Zone: Main Taproom (ID: taproom)\n",
		"Zone Description: Smoky.\n",
		`VALID EXITS: "Cellar" (ID: cellar).` + "\n",
		"[DM EYES ONLY - FULL LOCATION LAYOUT]:\n",
		"- ID: taproom | Name: Main Taproom | Exits: cellar, kitchen\n",
		"- ID: cellar | Name: Cellar | Exits: taproom\n",
	}
	for _, want := range expected {
		if !strings.Contains(got, want) {
			t.Errorf("Expected spatial context to contain %q, got:\n%s", want, got)
		}
	}
}

func TestSpatialContext_Undefined(t *testing.T) {
	got := SpatialContext(world.New(""))
	if !strings.Contains(got, "Player is in an undefined location.") {
		t.Errorf("Expected undefined location hint, got %q", got)
	}

	s := testSnapshot()
	s.CurrentZoneID = "gone"
	if !strings.Contains(SpatialContext(s), "undefined location") {
		t.Error("Expected unresolved zone to read as undefined")
	}
}

func TestSpatialContext_NoExits(t *testing.T) {
	s := testSnapshot()
	s.Locations[0].Zones[0].Connections = nil
	if !strings.Contains(SpatialContext(s), "VALID EXITS: None.") {
		t.Error("Expected None when no exits resolve")
	}
}

func TestInventoryContext(t *testing.T) {
	got := InventoryContext(testSnapshot())
	for _, want := range []string{
		"Wallet: 5G, 1S, 12C\n",
		"Equipped: Sword (Weapon)\n",
		"Backpack: Rope (x2)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected inventory context to contain %q, got:\n%s", want, got)
		}
	}

	empty := InventoryContext(world.New(""))
	if !strings.Contains(empty, "Equipped: Nothing\n") || !strings.Contains(empty, "Backpack: Empty\n") {
		t.Errorf("Unexpected empty inventory rendering:\n%s", empty)
	}
}

func TestBuilder_HistoryWindow(t *testing.T) {
	s := world.New("")
	for i := 0; i < 20; i++ {
		s.Messages = append(s.Messages, world.NewUserMessage(fmt.Sprintf("msg %d", i)))
	}
	req, err := BuildRequest(s, DefaultHistoryLimit)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(req.History) != DefaultHistoryLimit {
		t.Fatalf("Expected %d history messages, got %d", DefaultHistoryLimit, len(req.History))
	}
	if req.History[0].Text() != "msg 5" {
		t.Errorf("Expected window to start at msg 5, got %q", req.History[0].Text())
	}
}

func TestBuilder_HistorySkipsSystem(t *testing.T) {
	s := world.New("")
	s.Messages = append(s.Messages,
		world.Message{ID: "sys", Role: world.RoleSystem, Content: world.Text("rules")},
		world.NewUserMessage("hello"),
	)
	req, _ := New().WithSnapshot(s).Build()
	if len(req.History) != 1 || req.History[0].Role != world.RoleUser {
		t.Errorf("Expected only the user message, got %+v", req.History)
	}
}

func TestBuilder_HistoryIsCopied(t *testing.T) {
	s := world.New("")
	s.Messages = append(s.Messages, world.NewUserMessage("hello"))
	req, _ := New().WithSnapshot(s).Build()
	*req.History[0].Content = "changed"
	if s.Messages[0].Text() != "hello" {
		t.Error("Request history must not alias the snapshot")
	}
}

func TestWelcome(t *testing.T) {
	if !strings.Contains(Welcome("zai-org-glm-4.7"), "**zai-org-glm-4.7**") {
		t.Error("Expected welcome to name the model")
	}
}
