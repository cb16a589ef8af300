package editor

// Notification types pushed to the host.
const (
	NotificationLayers  = "layers-changed"
	NotificationHistory = "history-changed"
	NotificationPages   = "pages-changed"
	NotificationMessage = "notification"
)

type (
	Notification struct {
		Type    string `json:"type"`
		Payload any    `json:"payload"`
	}

	// Message is a transient user-facing notice such as a failed export.
	Message struct {
		Level string `json:"level"`
		Text  string `json:"text"`
	}

	HistoryState struct {
		CanUndo bool `json:"canUndo"`
		CanRedo bool `json:"canRedo"`
	}

	PagesState struct {
		Pages   []PageInfo `json:"pages"`
		Current string     `json:"current"`
	}

	// Notifier receives engine state changes. Calls happen on the engine goroutine
	// and must not block.
	Notifier interface {
		Notify(n Notification)
	}

	NopNotifier struct{}

	// NotifierFunc adapts a function to Notifier.
	NotifierFunc func(n Notification)
)

func (NopNotifier) Notify(Notification) {}

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
