package plugin

import (
	"fmt"
	"sync"

	"github.com/cayleygraph/rdfsail/clog"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	for _, v := range []Level{LevelInfo, LevelWarning, LevelError} {
		if v.String() == string(text) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", text)
}

// Interaction receives status reports from a running plugin.
type Interaction interface {
	SetProgress(current, total int, message string, modal bool)
	Notify(level Level, message string)
}

// LogInteraction reports to the log.
type LogInteraction struct {
	Name string
}

func (l LogInteraction) SetProgress(current, total int, message string, modal bool) {
	if clog.V(1) {
		clog.Infof("%s: [%d/%d] %s", l.Name, current, total, message)
	}
}

func (l LogInteraction) Notify(level Level, message string) {
	switch level {
	case LevelError:
		clog.Errorf("%s: %s", l.Name, message)
	case LevelWarning:
		clog.Warningf("%s: %s", l.Name, message)
	default:
		clog.Infof("%s: %s", l.Name, message)
	}
}

// Notification is a recorded call to Notify.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Progress is a recorded call to SetProgress.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Modal   bool   `json:"modal,omitempty"`
}

// Recorder keeps every report it receives and forwards it to Next, if set.
// It is safe for concurrent use.
type Recorder struct {
	Next Interaction

	mu            sync.Mutex
	notifications []Notification
	progress      Progress
}

func (r *Recorder) SetProgress(current, total int, message string, modal bool) {
	r.mu.Lock()
	r.progress = Progress{Current: current, Total: total, Message: message, Modal: modal}
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.SetProgress(current, total, message, modal)
	}
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	r.notifications = append(r.notifications, Notification{Level: level, Message: message})
	r.mu.Unlock()
	if r.Next != nil {
		r.Next.Notify(level, message)
	}
}

// Notifications returns the recorded notifications in order.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Progress returns the last reported progress.
func (r *Recorder) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}
