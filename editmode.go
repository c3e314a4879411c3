package sculpt

import (
	"log/slog"

	"github.com/akmonengine/sculpt/config"
	"github.com/akmonengine/sculpt/grab"
	"github.com/akmonengine/sculpt/scene"
	"github.com/akmonengine/sculpt/selection"
)

const (
	ModeIdle Mode = iota
	ModeSelecting
	ModeSphereSelecting
	ModeRemotePlacement
)

type Mode uint8

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeSelecting:
		return "selecting"
	case ModeSphereSelecting:
		return "sphere-selecting"
	case ModeRemotePlacement:
		return "remote-placement"
	}
	return "unknown"
}

// StateManager is the edit-mode state machine. It owns the mode, interprets
// the grab button's click-versus-hold ambiguity, and refreshes hover state
// every frame for whichever selection mode is active.
type StateManager struct {
	cfg         config.EditModeOptions
	world       scene.World
	ray         scene.Raycaster
	hands       scene.HandPoses
	sel         *selection.State
	hover       *selection.Hover
	sphereHover *selection.SphereHover
	grab        *grab.Controller
	highlight   scene.Highlighter
	events      *Events
	log         *slog.Logger

	mode           Mode
	prevSelectMode Mode
	now            float64
	pressing       bool
	pressTime      float64
	pressObject    scene.ObjectID
	multiModifier  bool
}

func newStateManager(
	cfg config.EditModeOptions,
	world scene.World,
	ray scene.Raycaster,
	hands scene.HandPoses,
	sel *selection.State,
	hover *selection.Hover,
	sphereHover *selection.SphereHover,
	grabCtl *grab.Controller,
	highlight scene.Highlighter,
	events *Events,
	log *slog.Logger,
) *StateManager {
	return &StateManager{
		cfg:            cfg,
		world:          world,
		ray:            ray,
		hands:          hands,
		sel:            sel,
		hover:          hover,
		sphereHover:    sphereHover,
		grab:           grabCtl,
		highlight:      highlight,
		events:         events,
		log:            log,
		mode:           ModeIdle,
		prevSelectMode: ModeSelecting,
	}
}

func (m *StateManager) Mode() Mode {
	return m.mode
}

func (m *StateManager) setMode(mode Mode) {
	if mode == m.mode {
		return
	}
	prev := m.mode
	m.mode = mode
	m.events.emit(ModeChangedEvent{Previous: prev, Current: mode})
	m.log.Debug("mode changed", "from", prev.String(), "to", mode.String())
}

// EnterEditMode activates the editor in ray-selection mode.
func (m *StateManager) EnterEditMode() {
	if m.mode != ModeIdle {
		return
	}
	m.setMode(ModeSelecting)
}

// ExitEditMode commits any running grab and drops all transient state:
// selection, hover and every highlight.
func (m *StateManager) ExitEditMode() {
	if m.mode == ModeIdle {
		return
	}
	if m.grab.Active() {
		m.endGrab()
	}
	m.pressing = false
	m.sel.Clear()
	m.hover.Clear()
	m.sphereHover.Clear()
	m.highlight.Clear()
	m.setMode(ModeIdle)
}

// HandleJoystickClick toggles between ray and sphere selection.
func (m *StateManager) HandleJoystickClick() {
	switch m.mode {
	case ModeSelecting:
		m.sphereHover.Clear()
		m.setMode(ModeSphereSelecting)
	case ModeSphereSelecting:
		m.hover.Clear()
		m.setMode(ModeSelecting)
	}
}

// SetMultiSelectModifier tracks the modifier button that turns a click into
// a toggle instead of a replace.
func (m *StateManager) SetMultiSelectModifier(held bool) {
	m.multiModifier = held
}

// HandleGrabButton feeds grab button edges. A press starts hold timing
// against the hovered object; the release decides between click-select and
// ending a placement.
func (m *StateManager) HandleGrabButton(pressed bool) {
	switch {
	case pressed && (m.mode == ModeSelecting || m.mode == ModeSphereSelecting):
		m.pressing = true
		m.pressTime = m.now
		m.pressObject = m.pressTarget()

	case !pressed && m.mode == ModeRemotePlacement:
		m.endGrab()
		m.setMode(m.prevSelectMode)

	case !pressed && m.pressing:
		m.pressing = false
		m.click()
	}
}

func (m *StateManager) pressTarget() scene.ObjectID {
	if m.mode == ModeSphereSelecting {
		if hovered := m.sphereHover.Snapshot(); len(hovered) > 0 {
			return hovered[0]
		}
		return scene.NoObject
	}
	return m.hover.Current()
}

// click is a quick press and release: select.
func (m *StateManager) click() {
	if m.mode == ModeSphereSelecting {
		hovered := m.sphereHover.Snapshot()
		if len(hovered) == 0 {
			return
		}
		if m.multiModifier {
			merged := m.sel.Snapshot()
			for _, id := range hovered {
				if !m.sel.IsSelected(id) {
					merged = append(merged, id)
				}
			}
			m.sel.Replace(merged)
		} else {
			m.sel.Replace(hovered)
		}
		return
	}

	if m.pressObject.IsZero() {
		if !m.multiModifier {
			m.sel.Clear()
		}
		return
	}
	if m.multiModifier {
		m.sel.Toggle(m.pressObject)
	} else {
		m.sel.Replace([]scene.ObjectID{m.pressObject})
	}
}

// beginHold fires when the press outlasts the threshold: grab.
func (m *StateManager) beginHold() {
	m.pressing = false
	if m.pressObject.IsZero() {
		return
	}

	// A hold on a selected object drags the whole selection along; a hold
	// on anything else collapses the selection to just that object first.
	if !m.sel.IsSelected(m.pressObject) {
		m.sel.Replace([]scene.ObjectID{m.pressObject})
	}

	m.prevSelectMode = m.mode
	if m.grab.Begin(m.pressObject) {
		m.events.emit(GrabStartedEvent{Objects: m.grab.Objects()})
		m.setMode(ModeRemotePlacement)
	}
}

func (m *StateManager) endGrab() {
	id, _ := m.grab.End(true)
	m.events.emit(GrabEndedEvent{Committed: true, Action: id})
}

func (m *StateManager) OnFrameUpdate(dt float64) {
	m.now += dt

	if m.pressing && m.now-m.pressTime >= m.cfg.HoldThreshold {
		m.beginHold()
	}

	switch m.mode {
	case ModeSelecting:
		m.updateRayHover()
	case ModeSphereSelecting:
		m.updateSphereHover()
	}
}

func (m *StateManager) updateRayHover() {
	hand, ok := m.hands.Pose(scene.HandRight)
	if !ok {
		m.hover.Clear()
		return
	}
	hit := m.ray.CastRay(hand.Position, hand.Forward(), m.cfg.RayMaxDistance)
	if hit.Hit && !hit.Object.IsZero() {
		m.hover.Set(hit.Object)
	} else {
		m.hover.Clear()
	}
}

func (m *StateManager) updateSphereHover() {
	hand, ok := m.hands.Pose(scene.HandRight)
	if !ok {
		m.sphereHover.Clear()
		return
	}
	center := hand.Position.Add(hand.Forward().Mul(m.cfg.SphereDistance))

	var ids []scene.ObjectID
	m.world.ForEachInRange(center, m.cfg.SphereRadius, func(obj *scene.Object) bool {
		if obj.Kind != scene.KindActor {
			ids = append(ids, obj.ID)
		}
		return true
	})
	m.sphereHover.Set(ids)
}
