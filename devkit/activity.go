package devkit

import (
	"github.com/goliatone/go-inapp-payments/core"
	"github.com/puzpuzpuz/xsync/v4"
)

// FakeActivityBinding delivers activity results to registered listeners.
type FakeActivityBinding struct {
	activity  core.Activity
	listeners *xsync.Map[core.ActivityResultListener, struct{}]
}

func NewFakeActivityBinding(activity core.Activity) *FakeActivityBinding {
	return &FakeActivityBinding{
		activity:  activity,
		listeners: xsync.NewMap[core.ActivityResultListener, struct{}](),
	}
}

func (b *FakeActivityBinding) Activity() core.Activity { return b.activity }

func (b *FakeActivityBinding) AddActivityResultListener(listener core.ActivityResultListener) {
	if listener == nil {
		return
	}
	b.listeners.Store(listener, struct{}{})
}

func (b *FakeActivityBinding) RemoveActivityResultListener(listener core.ActivityResultListener) {
	if listener == nil {
		return
	}
	b.listeners.Delete(listener)
}

func (b *FakeActivityBinding) ListenerCount() int {
	return b.listeners.Size()
}

// Deliver hands result to every listener and reports whether one consumed
// it. Call it from the UI thread.
func (b *FakeActivityBinding) Deliver(result core.ActivityResult) bool {
	consumed := false
	b.listeners.Range(func(listener core.ActivityResultListener, _ struct{}) bool {
		if listener.OnActivityResult(result) {
			consumed = true
		}
		return true
	})
	return consumed
}

// DeliverOn posts Deliver to ui.
func (b *FakeActivityBinding) DeliverOn(ui core.UIThread, result core.ActivityResult) {
	ui.Post(func() { b.Deliver(result) })
}

var _ core.ActivityBinding = (*FakeActivityBinding)(nil)
