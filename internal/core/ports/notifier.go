package ports

// ReloadNotifier signals connected development clients that output changed.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type ReloadNotifier interface {
	// Reload is fire-and-forget. The token only identifies the pass that triggered it.
	Reload(token string)
}
