package sculpt

import (
	"testing"

	"github.com/akmonengine/sculpt/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameDt = 1.0 / 60.0

// aimAt points the fake ray at an object so the next frame hovers it.
func (f *editorFixture) aimAt(obj *scene.Object) {
	f.ray.hit = scene.RaycastHit{
		Hit:      true,
		Position: obj.Transform.Position,
		Normal:   mgl64.Vec3{0, 0, 1},
		Object:   obj.ID,
	}
}

func (f *editorFixture) aimAtNothing() {
	f.ray.hit = scene.RaycastHit{}
}

func TestEnterAndExitEditMode(t *testing.T) {
	f := newEditorFixture(t)
	m := f.editor.Modes

	assert.Equal(t, ModeIdle, m.Mode())
	m.EnterEditMode()
	assert.Equal(t, ModeSelecting, m.Mode())

	m.ExitEditMode()
	assert.Equal(t, ModeIdle, m.Mode())
}

func TestClickSelectsHoveredObject(t *testing.T) {
	f := newEditorFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(obj)
	f.editor.Update(frameDt)

	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	assert.Equal(t, []scene.ObjectID{obj.ID}, f.editor.Selection.Snapshot())
	assert.Equal(t, ModeSelecting, m.Mode(), "a quick click never enters placement")
}

func TestClickReplacesSelection(t *testing.T) {
	f := newEditorFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{50, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(a)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	f.aimAt(b)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	assert.Equal(t, []scene.ObjectID{b.ID}, f.editor.Selection.Snapshot())
}

func TestModifierClickToggles(t *testing.T) {
	f := newEditorFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{50, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(a)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	m.SetMultiSelectModifier(true)
	f.aimAt(b)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)
	assert.Equal(t, []scene.ObjectID{a.ID, b.ID}, f.editor.Selection.Snapshot())

	// Toggling again removes it.
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)
	assert.Equal(t, []scene.ObjectID{a.ID}, f.editor.Selection.Snapshot())
}

func TestClickOnNothingClearsSelection(t *testing.T) {
	f := newEditorFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(obj)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)
	require.Equal(t, 1, f.editor.Selection.Len())

	f.aimAtNothing()
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)
	assert.Equal(t, 0, f.editor.Selection.Len())
}

func TestModifierClickOnNothingKeepsSelection(t *testing.T) {
	f := newEditorFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(obj)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	m.SetMultiSelectModifier(true)
	f.aimAtNothing()
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	m.HandleGrabButton(false)
	assert.Equal(t, 1, f.editor.Selection.Len())
}

func TestHoldBeginsPlacement(t *testing.T) {
	f := newEditorFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(obj)
	f.editor.Update(frameDt)

	m.HandleGrabButton(true)
	f.editor.Update(0.3) // past the hold threshold

	assert.Equal(t, ModeRemotePlacement, m.Mode())
	assert.True(t, f.editor.Grab.Active())
	assert.Equal(t, []scene.ObjectID{obj.ID}, f.editor.Grab.Objects())

	// Release commits the placement and returns to selection.
	m.HandleGrabButton(false)
	assert.Equal(t, ModeSelecting, m.Mode())
	assert.False(t, f.editor.Grab.Active())
}

func TestHoldOnUnselectedCollapsesSelection(t *testing.T) {
	f := newEditorFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{50, 100, 0})
	c := f.addProp(mgl64.Vec3{-50, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.editor.Selection.Replace([]scene.ObjectID{a.ID, b.ID})

	f.aimAt(c)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	f.editor.Update(0.3)

	assert.Equal(t, []scene.ObjectID{c.ID}, f.editor.Selection.Snapshot())
	assert.Equal(t, []scene.ObjectID{c.ID}, f.editor.Grab.Objects())
	m.HandleGrabButton(false)
}

func TestHoldOnSelectedGrabsWholeSelection(t *testing.T) {
	f := newEditorFixture(t)
	a := f.addProp(mgl64.Vec3{0, 100, 0})
	b := f.addProp(mgl64.Vec3{50, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.editor.Selection.Replace([]scene.ObjectID{a.ID, b.ID})

	f.aimAt(a)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	f.editor.Update(0.3)

	assert.ElementsMatch(t, []scene.ObjectID{a.ID, b.ID}, f.editor.Grab.Objects())
	m.HandleGrabButton(false)
}

func TestHoldOnNothingDoesNotGrab(t *testing.T) {
	f := newEditorFixture(t)
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAtNothing()
	f.editor.Update(frameDt)

	m.HandleGrabButton(true)
	f.editor.Update(0.3)

	assert.Equal(t, ModeSelecting, m.Mode())
	assert.False(t, f.editor.Grab.Active())
}

func TestJoystickTogglesSphereMode(t *testing.T) {
	f := newEditorFixture(t)
	m := f.editor.Modes

	m.EnterEditMode()
	m.HandleJoystickClick()
	assert.Equal(t, ModeSphereSelecting, m.Mode())
	m.HandleJoystickClick()
	assert.Equal(t, ModeSelecting, m.Mode())
}

func TestSphereClickSelectsHoveredSet(t *testing.T) {
	f := newEditorFixture(t)
	// Sphere centers 150 along +Y with radius 50.
	a := f.addProp(mgl64.Vec3{0, 140, 0})
	b := f.addProp(mgl64.Vec3{10, 160, 0})
	f.addProp(mgl64.Vec3{0, 400, 0}) // out of reach
	m := f.editor.Modes

	m.EnterEditMode()
	m.HandleJoystickClick()
	f.editor.Update(frameDt)

	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	assert.ElementsMatch(t, []scene.ObjectID{a.ID, b.ID}, f.editor.Selection.Snapshot())
}

func TestSphereHoverExcludesActors(t *testing.T) {
	f := newEditorFixture(t)
	prop := f.addProp(mgl64.Vec3{0, 150, 0})
	npc := &scene.Object{
		ID:          scene.NewObjectID(),
		Transform:   prop.Transform,
		HalfExtents: mgl64.Vec3{1, 1, 1},
		Kind:        scene.KindActor,
		Layer:       scene.LayerBiped,
	}
	f.world.Add(npc)
	m := f.editor.Modes

	m.EnterEditMode()
	m.HandleJoystickClick()
	f.editor.Update(frameDt)

	m.HandleGrabButton(true)
	m.HandleGrabButton(false)

	assert.Equal(t, []scene.ObjectID{prop.ID}, f.editor.Selection.Snapshot())
}

func TestExitEditModeDropsEverything(t *testing.T) {
	f := newEditorFixture(t)
	obj := f.addProp(mgl64.Vec3{0, 100, 0})
	m := f.editor.Modes

	m.EnterEditMode()
	f.aimAt(obj)
	f.editor.Update(frameDt)
	m.HandleGrabButton(true)
	f.editor.Update(0.3)
	require.True(t, f.editor.Grab.Active())

	m.ExitEditMode()
	assert.Equal(t, ModeIdle, m.Mode())
	assert.False(t, f.editor.Grab.Active())
	assert.Equal(t, 0, f.editor.Selection.Len())
	assert.Empty(t, f.highlight.highlighted)
}

func TestModeChangeEmitsEvent(t *testing.T) {
	f := newEditorFixture(t)

	var got []ModeChangedEvent
	f.editor.Events.Subscribe(MODE_CHANGED, func(e Event) {
		got = append(got, e.(ModeChangedEvent))
	})

	f.editor.Modes.EnterEditMode()
	f.editor.Update(frameDt)

	require.Len(t, got, 1)
	assert.Equal(t, ModeIdle, got[0].Previous)
	assert.Equal(t, ModeSelecting, got[0].Current)
}
