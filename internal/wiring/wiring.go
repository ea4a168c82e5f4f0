// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/lokal/internal/adapters/cas"
	_ "go.trai.ch/lokal/internal/adapters/codec"
	_ "go.trai.ch/lokal/internal/adapters/config"
	_ "go.trai.ch/lokal/internal/adapters/devserver"
	_ "go.trai.ch/lokal/internal/adapters/fs"
	_ "go.trai.ch/lokal/internal/adapters/htmlscan"
	_ "go.trai.ch/lokal/internal/adapters/logger"
	_ "go.trai.ch/lokal/internal/adapters/metrics"
	_ "go.trai.ch/lokal/internal/adapters/minify"
	_ "go.trai.ch/lokal/internal/adapters/render"
	_ "go.trai.ch/lokal/internal/adapters/telemetry"
	_ "go.trai.ch/lokal/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/lokal/internal/app"
	_ "go.trai.ch/lokal/internal/engine/pipeline"
	_ "go.trai.ch/lokal/internal/engine/routes"
	_ "go.trai.ch/lokal/internal/engine/scheduler"
	_ "go.trai.ch/lokal/internal/engine/site"
	_ "go.trai.ch/lokal/internal/engine/watch"
)
