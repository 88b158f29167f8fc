package muncher

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"
)

// Stage names a progress boundary of a run
type Stage string

// Progress boundaries
const (
	StageDownload Stage = "download"
	StageParse    Stage = "parse"
	StageImport   Stage = "import"
	StageComplete Stage = "complete"
	StageFailure  Stage = "failure"
)

// EventTypeProgress is the event type used for progress notes on an event bus
const EventTypeProgress = "muncher.progress"

// Note is a human readable progress message
type Note struct {
	Stage   Stage
	Message string
	// Count is the number of entities involved, when the stage has one
	Count int
}

// Notifier receives progress notes
type Notifier interface {
	Notify(ctx context.Context, note Note)
}

// LogNotifier writes notes to the default logger
type LogNotifier struct{}

// Notify implements Notifier
func (LogNotifier) Notify(_ context.Context, note Note) {
	slog.Info(note.Message, "stage", note.Stage, "count", note.Count)
}

// BusNotifier publishes notes on an rpg-toolkit event bus
type BusNotifier struct {
	bus events.EventBus
}

// NewBusNotifier creates a notifier publishing to bus
func NewBusNotifier(bus events.EventBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// Notify implements Notifier. Publish failures are logged and dropped.
func (n *BusNotifier) Notify(ctx context.Context, note Note) {
	event := events.NewGameEvent(EventTypeProgress, nil, nil)
	event.Context().Set("stage", string(note.Stage))
	event.Context().Set("message", note.Message)
	event.Context().Set("count", note.Count)

	if err := n.bus.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish progress note", "stage", note.Stage, "error", err)
	}
}

// SubscribeNotes calls fn for every progress note published on bus.
// It returns the subscription id for Unsubscribe.
func SubscribeNotes(bus events.EventBus, fn func(Note)) string {
	return bus.SubscribeFunc(EventTypeProgress, 0, func(_ context.Context, event events.Event) error {
		fn(noteFromEvent(event))
		return nil
	})
}

func noteFromEvent(event events.Event) Note {
	var note Note
	if value, ok := event.Context().Get("stage"); ok {
		stage, _ := value.(string)
		note.Stage = Stage(stage)
	}
	if value, ok := event.Context().Get("message"); ok {
		note.Message, _ = value.(string)
	}
	if value, ok := event.Context().Get("count"); ok {
		note.Count, _ = value.(int)
	}
	return note
}
