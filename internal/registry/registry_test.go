package registry

import (
	"testing"

	"github.com/vovakirdan/tui-brix/internal/core"
)

type stubGame struct{ id string }

func (g stubGame) ID() string                   { return g.id }
func (g stubGame) Title() string                { return "Stub " + g.id }
func (stubGame) Reset(core.RuntimeConfig) error { return nil }
func (stubGame) Render(*core.Screen)            {}
func (stubGame) State() core.GameState          { return core.GameState{} }

func (stubGame) Step(core.MultiInputFrame) (core.StepResult, error) {
	return core.StepResult{}, nil
}

func TestRegisterAndCreate(t *testing.T) {
	Register("zz-stub", func() Game { return stubGame{id: "zz-stub"} })
	Register("aa-stub", func() Game { return stubGame{id: "aa-stub"} })

	if !Exists("zz-stub") {
		t.Fatal("Exists(zz-stub) = false")
	}

	g, err := Create("aa-stub")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if g.ID() != "aa-stub" {
		t.Errorf("Create() returned %q", g.ID())
	}

	var ids []string
	for _, info := range List() {
		ids = append(ids, info.ID)
		if info.ID == "aa-stub" && info.Title != "Stub aa-stub" {
			t.Errorf("title = %q", info.Title)
		}
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("List() not sorted: %v", ids)
		}
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("missing"); err == nil {
		t.Error("Create(missing) should fail")
	}
	if Exists("missing") {
		t.Error("Exists(missing) = true")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("dup-stub", func() Game { return stubGame{id: "dup-stub"} })
}
