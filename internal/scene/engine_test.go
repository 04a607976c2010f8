package scene

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vealive/veahome-core/internal/device"
	"github.com/vealive/veahome-core/internal/telemetry"
)

// ─── Mock Dependencies ───────────────────────────────────────────────────────

type mockSceneRepo struct {
	scenes    map[string]*Scene
	activated []string // "homeID/sceneID" pairs in call order
}

func newMockSceneRepo() *mockSceneRepo {
	return &mockSceneRepo{scenes: make(map[string]*Scene)}
}

func (m *mockSceneRepo) GetByID(_ context.Context, id string) (*Scene, error) {
	if s, ok := m.scenes[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *mockSceneRepo) ListByHome(_ context.Context, homeID string) ([]Scene, error) {
	var out []Scene
	for _, s := range m.scenes {
		if s.HomeID == homeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSceneRepo) Activate(_ context.Context, homeID, sceneID string) error {
	if _, ok := m.scenes[sceneID]; !ok {
		return ErrNotFound
	}
	m.activated = append(m.activated, homeID+"/"+sceneID)
	for id, s := range m.scenes {
		if s.HomeID == homeID {
			s.IsActive = id == sceneID
		}
	}
	return nil
}

type mockDeviceRepo struct {
	mu      sync.Mutex
	devices map[string]*device.Device
	hubs    map[string]*device.Hub
	patches map[string][]device.StatePatch
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{
		devices: make(map[string]*device.Device),
		hubs:    make(map[string]*device.Hub),
		patches: make(map[string][]device.StatePatch),
	}
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*device.Device, error) {
	if dev, ok := m.devices[id]; ok {
		return dev, nil
	}
	return nil, device.ErrNotFound
}

func (m *mockDeviceRepo) GetWithHub(ctx context.Context, id string) (*device.Device, *device.Hub, error) {
	dev, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	hub, ok := m.hubs[dev.HubID]
	if !ok {
		return nil, nil, device.ErrHubNotFound
	}
	return dev, hub, nil
}

func (m *mockDeviceRepo) ListByHome(_ context.Context, homeID string) ([]device.Device, error) {
	var out []device.Device
	for _, dev := range m.devices {
		if dev.HomeID == homeID {
			out = append(out, *dev)
		}
	}
	return out, nil
}

func (m *mockDeviceRepo) UpdateState(_ context.Context, id string, patch device.StatePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.devices[id]; !ok {
		return device.ErrNotFound
	}
	m.patches[id] = append(m.patches[id], patch)
	return nil
}

func (m *mockDeviceRepo) patchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, patches := range m.patches {
		n += len(patches)
	}
	return n
}

type mockHubRepo struct {
	hubs map[string]*device.Hub
}

func (m *mockHubRepo) GetByID(_ context.Context, id string) (*device.Hub, error) {
	if hub, ok := m.hubs[id]; ok {
		return hub, nil
	}
	return nil, device.ErrHubNotFound
}

func (m *mockHubRepo) ListByHome(_ context.Context, homeID string) ([]device.Hub, error) {
	var out []device.Hub
	for _, hub := range m.hubs {
		if hub.HomeID == homeID {
			out = append(out, *hub)
		}
	}
	return out, nil
}

type mockPublisher struct {
	mu        sync.Mutex
	published map[string][]byte
	err       error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]byte)}
}

func (m *mockPublisher) PublishJSON(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published[topic] = payload
	return nil
}

func (m *mockPublisher) get(topic string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.published[topic]
	return p, ok
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

type mockRecorder struct {
	mu         sync.Mutex
	activities []telemetry.Activity
}

func (m *mockRecorder) Record(a telemetry.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, a)
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activities)
}

type testLogger struct {
	mu       sync.Mutex
	warnings int
	errors   int
}

func (l *testLogger) Info(string, ...any) {}
func (l *testLogger) Warn(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings++
}
func (l *testLogger) Error(string, ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors++
}

// ─── Test Fixtures ───────────────────────────────────────────────────────────

type engineFixture struct {
	engine   *Engine
	scenes   *mockSceneRepo
	devices  *mockDeviceRepo
	pub      *mockPublisher
	recorder *mockRecorder
	logger   *testLogger
}

func newEngineFixture() *engineFixture {
	scenes := newMockSceneRepo()
	devices := newMockDeviceRepo()
	hubs := &mockHubRepo{hubs: devices.hubs}
	pub := newMockPublisher()
	recorder := &mockRecorder{}
	logger := &testLogger{}

	dispatcher := NewDispatcher(pub, hubs, logger)
	engine := NewEngine(scenes, devices, hubs, dispatcher, recorder, logger)
	engine.now = func() time.Time { return time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC) }

	return &engineFixture{
		engine:   engine,
		scenes:   scenes,
		devices:  devices,
		pub:      pub,
		recorder: recorder,
		logger:   logger,
	}
}

func (f *engineFixture) addHub(hub device.Hub) {
	f.devices.hubs[hub.ID] = &hub
}

func (f *engineFixture) addDevice(dev device.Device) {
	f.devices.devices[dev.ID] = &dev
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestActivateScene(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1", Status: "online"})
	f.addDevice(device.Device{ID: "light-1", HubID: "hub-1", HomeID: "home-1", Type: "light", Category: "lighting"})
	f.addDevice(device.Device{ID: "light-2", HubID: "hub-1", HomeID: "home-1", Type: "light", Category: "lighting"})

	f.scenes.scenes["scene-1"] = &Scene{
		ID:     "scene-1",
		HomeID: "home-1",
		Scope:  ScopeHome,
		Rules: []DeviceTypeRule{
			{DeviceType: "light", Mode: ModeAll, State: DesiredState{IsActive: boolPtr(true)}},
		},
	}

	err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual)
	if err != nil {
		t.Fatalf("ActivateScene() error: %v", err)
	}

	if len(f.scenes.activated) != 1 || f.scenes.activated[0] != "home-1/scene-1" {
		t.Errorf("activation calls = %v", f.scenes.activated)
	}

	// One command per light on its control topic
	for _, id := range []string{"light-1", "light-2"} {
		if _, ok := f.pub.get("hubs/hub-1/devices/" + id + "/control"); !ok {
			t.Errorf("no command published for %s", id)
		}
	}

	// One patch and one activity per applied update
	if got := f.devices.patchCount(); got != 2 {
		t.Errorf("patches = %d, want 2", got)
	}
	if got := f.recorder.count(); got != 2 {
		t.Errorf("activities = %d, want 2", got)
	}
}

func TestActivateSceneSurvivesDispatchFailures(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1"})
	f.addDevice(device.Device{ID: "light-1", HubID: "hub-1", HomeID: "home-1", Type: "light"})

	f.pub.err = errors.New("broker down")

	f.scenes.scenes["scene-1"] = &Scene{
		ID: "scene-1", HomeID: "home-1", Scope: ScopeHome,
		Rules: []DeviceTypeRule{
			{DeviceType: "light", Mode: ModeAll, State: DesiredState{IsActive: boolPtr(true)}},
		},
	}

	if err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual); err != nil {
		t.Fatalf("activation must not fail on dispatch errors, got: %v", err)
	}

	// State still persisted and activity still recorded
	if got := f.devices.patchCount(); got != 1 {
		t.Errorf("patches = %d, want 1", got)
	}
	if got := f.recorder.count(); got != 1 {
		t.Errorf("activities = %d, want 1", got)
	}
}

func TestActivateSceneActivityPerNormalizedUpdate(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1"})
	f.addDevice(device.Device{ID: "therm-1", HubID: "hub-1", HomeID: "home-1", Type: "thermostat", Value: floatPtr(22)})
	f.addDevice(device.Device{ID: "therm-2", HubID: "hub-1", HomeID: "home-1", Type: "thermostat", Value: floatPtr(18)})
	f.addDevice(device.Device{ID: "sensor-1", HubID: "hub-1", HomeID: "home-1", Type: "sensor"})

	f.scenes.scenes["scene-1"] = &Scene{
		ID: "scene-1", HomeID: "home-1", Scope: ScopeHome,
		Rules: []DeviceTypeRule{
			{DeviceType: "thermostat", Mode: ModeAll, State: DesiredState{Value: floatPtr(22)}},
			// Empty state normalizes to nil: no command, no activity
			{DeviceType: "sensor", Mode: ModeAll, State: DesiredState{}},
		},
	}

	if err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual); err != nil {
		t.Fatalf("ActivateScene() error: %v", err)
	}

	if got := f.recorder.count(); got != 2 {
		t.Errorf("activities = %d, want 2 (sensor-1 normalizes to nil)", got)
	}
	if got := f.pub.count(); got != 2 {
		t.Errorf("commands = %d, want 2", got)
	}
	if _, ok := f.pub.get("hubs/hub-1/devices/therm-2/control"); !ok {
		t.Error("therm-2 should receive a TEMP_UP command")
	}
	// At the target the step still fires, biased downward
	if payload, ok := f.pub.get("hubs/hub-1/devices/therm-1/control"); !ok {
		t.Error("therm-1 should receive a command")
	} else if !strings.Contains(string(payload), ActionTempDown) {
		t.Errorf("therm-1 command = %s, want TEMP_DOWN", payload)
	}
}

func TestActivateSceneBuzzerRouting(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1", SerialNumber: "SM-42", Status: "online"})

	f.scenes.scenes["scene-1"] = &Scene{
		ID: "scene-1", HomeID: "home-1", Scope: ScopeHome,
		Rules: []DeviceTypeRule{
			{DeviceType: "airguard", Mode: ModeAll, State: DesiredState{Buzzer: boolPtr(true)}},
		},
	}

	if err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual); err != nil {
		t.Fatalf("ActivateScene() error: %v", err)
	}

	// The hub projection resolves its monitor ID from the serial number
	payload, ok := f.pub.get("vealive/smartmonitor/42/command/buzzer")
	if !ok {
		t.Fatalf("buzzer command not routed to monitor topic")
	}
	if string(payload) != `{"state":"ON"}` {
		t.Errorf("buzzer payload = %s", payload)
	}

	// Hub projections have no device row; no patch expected
	if got := f.devices.patchCount(); got != 0 {
		t.Errorf("patches = %d, want 0 for virtual device", got)
	}
	if got := f.recorder.count(); got != 1 {
		t.Errorf("activities = %d, want 1", got)
	}
}

func TestActivateSceneWrongHome(t *testing.T) {
	f := newEngineFixture()
	f.scenes.scenes["scene-1"] = &Scene{ID: "scene-1", HomeID: "home-2", Scope: ScopeHome}

	err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual)
	if !errors.Is(err, ErrWrongHome) {
		t.Errorf("got %v, want ErrWrongHome", err)
	}
	if len(f.scenes.activated) != 0 {
		t.Error("scene must not be activated for the wrong home")
	}
}

func TestActivateSceneNotFound(t *testing.T) {
	f := newEngineFixture()
	err := f.engine.ActivateScene(context.Background(), "home-1", "missing", SourceManual)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestActivateSceneInvalidDefinition(t *testing.T) {
	f := newEngineFixture()
	f.scenes.scenes["scene-1"] = &Scene{
		ID: "scene-1", HomeID: "home-1", Scope: "building",
	}

	err := f.engine.ActivateScene(context.Background(), "home-1", "scene-1", SourceManual)
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("got %v, want ErrInvalidScene", err)
	}
}

func TestControlDevice(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1", MQTTTopic: "custom/hub"})
	f.addDevice(device.Device{
		ID: "light-1", HubID: "hub-1", HomeID: "home-1", Type: "light",
		SignalMappings: map[string]any{"ON": "0xA90"},
	})

	err := f.engine.ControlDevice(context.Background(), "light-1", DesiredState{IsActive: boolPtr(true)}, SourceManual)
	if err != nil {
		t.Fatalf("ControlDevice() error: %v", err)
	}

	// Custom hub topic honoured
	if _, ok := f.pub.get("custom/hub/devices/light-1/control"); !ok {
		t.Errorf("command not published to custom hub topic; topics: %v", f.pub.published)
	}
	if got := f.devices.patchCount(); got != 1 {
		t.Errorf("patches = %d, want 1", got)
	}
	if got := f.recorder.count(); got != 1 {
		t.Errorf("activities = %d, want 1", got)
	}
}

func TestControlDeviceSelfPairedMonitorPersists(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1"})
	// A monitor paired as its own hub stores a real device row under the
	// hub ID; it is not a projection and must keep its state patch.
	f.addDevice(device.Device{ID: "hub-1", HubID: "hub-1", HomeID: "home-1", Type: "smart-monitor"})

	err := f.engine.ControlDevice(context.Background(), "hub-1", DesiredState{IsActive: boolPtr(true)}, SourceManual)
	if err != nil {
		t.Fatalf("ControlDevice() error: %v", err)
	}

	if got := f.devices.patchCount(); got != 1 {
		t.Errorf("patches = %d, want 1 for stored self-paired row", got)
	}
	if got := f.recorder.count(); got != 1 {
		t.Errorf("activities = %d, want 1", got)
	}
}

func TestControlDeviceEmptyState(t *testing.T) {
	f := newEngineFixture()
	err := f.engine.ControlDevice(context.Background(), "light-1", DesiredState{}, SourceManual)
	if !errors.Is(err, ErrEmptyState) {
		t.Errorf("got %v, want ErrEmptyState", err)
	}
}

func TestControlDeviceNotFound(t *testing.T) {
	f := newEngineFixture()
	err := f.engine.ControlDevice(context.Background(), "missing", DesiredState{IsActive: boolPtr(true)}, SourceManual)
	if !errors.Is(err, device.ErrNotFound) {
		t.Errorf("got %v, want device.ErrNotFound", err)
	}
}

func TestControlDeviceValueOnlyNonSetpointType(t *testing.T) {
	f := newEngineFixture()
	f.addHub(device.Hub{ID: "hub-1", HomeID: "home-1"})
	f.addDevice(device.Device{ID: "blind-1", HubID: "hub-1", HomeID: "home-1", Type: "blind"})

	err := f.engine.ControlDevice(context.Background(), "blind-1", DesiredState{Value: floatPtr(60)}, SourceManual)
	if err != nil {
		t.Fatalf("ControlDevice() error: %v", err)
	}

	// Value carried with no action: still dispatched, persisted, recorded
	payload, ok := f.pub.get("hubs/hub-1/devices/blind-1/control")
	if !ok {
		t.Fatal("command not published")
	}
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		t.Fatalf("unmarshalling command: %v", err)
	}
	if cmd.Action != "" {
		t.Errorf("action = %q, want empty", cmd.Action)
	}
	if cmd.Value == nil || *cmd.Value != 60 {
		t.Errorf("value = %v, want 60", cmd.Value)
	}
	if got := f.devices.patchCount(); got != 1 {
		t.Errorf("patches = %d, want 1", got)
	}
	if got := f.recorder.count(); got != 1 {
		t.Errorf("activities = %d, want 1", got)
	}
}
