package scene

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vealive/veahome-core/internal/device"
	"github.com/vealive/veahome-core/internal/telemetry"
)

// Engine coordinates scene activation and direct device control.
//
// Both paths share one pipeline: resolve targets, normalize desired
// state into a patch and a command, dispatch the command over MQTT,
// persist the patch, and record one activity. Dispatch failures never
// fail the pipeline; state persistence and activity recording proceed
// regardless so the stored model tracks intent, not delivery.
type Engine struct {
	scenes     Repository
	devices    device.Repository
	hubs       device.HubRepository
	dispatcher *Dispatcher
	recorder   telemetry.Recorder
	logger     Logger

	// now is injectable for deterministic command timestamps in tests.
	now func() time.Time
}

// NewEngine creates a scene engine.
func NewEngine(
	scenes Repository,
	devices device.Repository,
	hubs device.HubRepository,
	dispatcher *Dispatcher,
	recorder telemetry.Recorder,
	logger Logger,
) *Engine {
	return &Engine{
		scenes:     scenes,
		devices:    devices,
		hubs:       hubs,
		dispatcher: dispatcher,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// ActivateScene activates a scene and fans its desired states out to
// every resolved device.
//
// The scene is marked active (and its siblings inactive) in one atomic
// update before any commands go out, so concurrent activations settle
// on exactly one winner. Device fan-out runs concurrently with
// per-device failure isolation: a panic or error on one device never
// blocks the rest, and activation succeeds even when every dispatch
// drops.
//
// Parameters:
//   - ctx: Context for persistence operations
//   - homeID: The home the scene must belong to
//   - sceneID: The scene to activate
//   - source: What initiated the activation ("manual", "schedule")
//
// Returns:
//   - error: ErrNotFound, ErrWrongHome, ErrInvalidScene, or a wrapped
//     persistence error. Dispatch failures are not errors.
func (e *Engine) ActivateScene(ctx context.Context, homeID, sceneID, source string) error {
	s, err := e.scenes.GetByID(ctx, sceneID)
	if err != nil {
		return err
	}
	if s.HomeID != homeID {
		return fmt.Errorf("%w: scene %s, home %s", ErrWrongHome, sceneID, homeID)
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if err := e.scenes.Activate(ctx, homeID, sceneID); err != nil {
		return fmt.Errorf("marking scene active: %w", err)
	}

	devices, err := e.devices.ListByHome(ctx, homeID)
	if err != nil {
		return fmt.Errorf("listing home devices: %w", err)
	}
	hubs, err := e.hubs.ListByHome(ctx, homeID)
	if err != nil {
		return fmt.Errorf("listing home hubs: %w", err)
	}

	targets := ResolveTargets(s, devices, hubs)

	hubsByID := make(map[string]*device.Hub, len(hubs))
	for i := range hubs {
		hubsByID[hubs[i].ID] = &hubs[i]
	}

	var wg sync.WaitGroup
	for i := range targets {
		target := &targets[i]
		hub := hubsByID[target.Device.HubID]
		if hub == nil {
			e.logger.Warn("scene target has no hub, skipping",
				"scene_id", sceneID,
				"device_id", target.Device.ID,
				"hub_id", target.Device.HubID,
			)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("scene device apply panicked",
						"scene_id", sceneID,
						"device_id", target.Device.ID,
						"panic", r,
					)
				}
			}()
			e.apply(ctx, &target.Device, hub, target.State, source, sceneID, target.Projected)
		}()
	}
	wg.Wait()

	e.logger.Info("scene activated",
		"scene_id", sceneID,
		"home_id", homeID,
		"source", source,
		"devices", len(targets),
	)
	return nil
}

// ControlDevice applies a desired state to a single device.
//
// Parameters:
//   - ctx: Context for persistence operations
//   - deviceID: The device to control
//   - state: The desired state (at least one field must be set)
//   - source: What initiated the change ("manual", "schedule")
//
// Returns:
//   - error: ErrEmptyState, device.ErrNotFound, or a wrapped lookup
//     error. Dispatch failures are not errors.
func (e *Engine) ControlDevice(ctx context.Context, deviceID string, state DesiredState, source string) error {
	if state.IsEmpty() {
		return ErrEmptyState
	}

	dev, hub, err := e.devices.GetWithHub(ctx, deviceID)
	if err != nil {
		return err
	}

	e.apply(ctx, dev, hub, state, source, "", false)
	return nil
}

// apply runs the shared pipeline for one device: normalize, dispatch,
// persist, record. Exactly one activity is recorded per non-nil
// normalized update. projected marks hub projections, which have no
// device row to patch.
func (e *Engine) apply(ctx context.Context, dev *device.Device, hub *device.Hub, state DesiredState, source, sceneID string, projected bool) {
	n := Normalize(state, dev)
	if n == nil {
		return
	}

	cmd := Command{
		ID:        uuid.NewString(),
		DeviceID:  dev.ID,
		Action:    n.Action,
		Signal:    n.Signal,
		Value:     n.Value,
		Timestamp: e.now(),
		Source:    source,
		SceneID:   sceneID,
	}
	e.dispatcher.Dispatch(ctx, dev, hub, cmd)

	// Hub projections have no device row to patch; their state is
	// derived from connectivity. Stored rows, including monitors paired
	// under their own hub ID, always get the patch.
	if !projected {
		if err := e.devices.UpdateState(ctx, dev.ID, n.Patch); err != nil {
			e.logger.Error("persisting device state",
				"device_id", dev.ID,
				"action", n.Action,
				"error", err,
			)
		}
	}

	roomID := ""
	if dev.RoomID != nil {
		roomID = *dev.RoomID
	}
	e.recorder.Record(telemetry.Activity{
		HomeID:    dev.HomeID,
		RoomID:    roomID,
		DeviceID:  dev.ID,
		Category:  dev.Category,
		Source:    source,
		Value:     n.Patch.Value,
		IsActive:  n.Patch.IsActive,
		Timestamp: cmd.Timestamp,
	})
}
