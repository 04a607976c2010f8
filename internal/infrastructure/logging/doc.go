// Package logging provides structured logging for VeaHome Core.
//
// It wraps the standard library's log/slog with configuration-driven
// setup (level, format, output) and default fields identifying the
// service and version.
//
// # Usage
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("scene activated", "scene_id", id, "devices", n)
//
// Components should accept their own narrow Logger interface and use
// logger.With("component", name) to scope their output.
package logging
