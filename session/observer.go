package session

import "github.com/pithecene-io/mpub/types"

// Observer receives session notifications. All methods are called from the
// session goroutine, in order, and must not block for long.
type Observer interface {
	// StateChanged is called on every state change.
	StateChanged(from, to types.State)
	// UploadProgress is called while the listing body is being sent.
	UploadProgress(sent, total int64)
	// Completed is called exactly once, after the session reaches
	// StateComplete.
	Completed(result *Result)
}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStateChanged   func(from, to types.State)
	OnUploadProgress func(sent, total int64)
	OnCompleted      func(result *Result)
}

// StateChanged implements Observer.
func (o ObserverFuncs) StateChanged(from, to types.State) {
	if o.OnStateChanged != nil {
		o.OnStateChanged(from, to)
	}
}

// UploadProgress implements Observer.
func (o ObserverFuncs) UploadProgress(sent, total int64) {
	if o.OnUploadProgress != nil {
		o.OnUploadProgress(sent, total)
	}
}

// Completed implements Observer.
func (o ObserverFuncs) Completed(result *Result) {
	if o.OnCompleted != nil {
		o.OnCompleted(result)
	}
}

// Observers fans notifications out to several observers in order.
type Observers []Observer

// StateChanged implements Observer.
func (os Observers) StateChanged(from, to types.State) {
	for _, o := range os {
		o.StateChanged(from, to)
	}
}

// UploadProgress implements Observer.
func (os Observers) UploadProgress(sent, total int64) {
	for _, o := range os {
		o.UploadProgress(sent, total)
	}
}

// Completed implements Observer.
func (os Observers) Completed(result *Result) {
	for _, o := range os {
		o.Completed(result)
	}
}

var (
	_ Observer = ObserverFuncs{}
	_ Observer = Observers(nil)
)
