package toast

import "time"

// Type represents the toast severity. It selects iconography and color in
// the renderer and has no behavioral effect in this package.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Position is the screen edge a toast is anchored to. Each position is an
// independently ordered queue partition.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// Reason identifies the removal path that ended a toast's life. It is
// surfaced to observers and logs; the OnDismiss callback itself takes no
// arguments.
type Reason string

const (
	// ReasonTimeout means the lifecycle timer expired.
	ReasonTimeout Reason = "timeout"

	// ReasonGesture means a swipe crossed the commit threshold.
	ReasonGesture Reason = "gesture"

	// ReasonAction means the action control was pressed.
	ReasonAction Reason = "action"

	// ReasonHide means explicit Hide(id).
	ReasonHide Reason = "hide"

	// ReasonHideAll means the toast was swept by HideAll.
	ReasonHideAll Reason = "hide_all"
)

// DefaultDuration is how long a toast stays visible when no duration
// option is supplied.
const DefaultDuration = 4 * time.Second

// Record is one live toast: the caller-supplied configuration merged over
// defaults, plus the manager-assigned identity. Records are immutable once
// inserted; the manager hands out copies.
type Record struct {
	// ID is assigned by the manager ("toast-<n>"). Ids are unique and
	// monotonically increasing for the lifetime of the manager instance.
	ID string

	// Message is the required body text.
	Message string

	// Type is the severity (default TypeInfo).
	Type Type

	// Title is an optional heading.
	Title string

	// Duration is how long the toast stays visible. Zero means persistent:
	// the toast must be dismissed explicitly.
	Duration time.Duration

	// Position selects the queue partition (default PositionTop).
	Position Position

	// ActionLabel, when non-empty, tells the renderer to show an action
	// control instead of a close control.
	ActionLabel string

	// CreatedAt is when the record was inserted into the queue.
	CreatedAt time.Time

	// onPress runs when the action control is pressed. Dismissal follows
	// unconditionally, whether or not onPress panics.
	onPress func()

	// onDismiss runs exactly once, on whichever path removes the record.
	onDismiss func()
}

// HasAction reports whether the record carries an action control.
func (r Record) HasAction() bool {
	return r.ActionLabel != ""
}

// Persistent reports whether the record has no lifecycle timer.
func (r Record) Persistent() bool {
	return r.Duration == 0
}

// Option customizes a single Show call. Options are applied over the
// manager's defaults.
type Option func(*Record)

// WithType sets the toast severity.
func WithType(t Type) Option {
	return func(r *Record) {
		r.Type = t
	}
}

// WithTitle sets an optional heading above the message.
func WithTitle(title string) Option {
	return func(r *Record) {
		r.Title = title
	}
}

// WithDuration sets how long the toast stays visible. A duration of zero
// makes the toast persistent; negative values are treated as zero.
func WithDuration(d time.Duration) Option {
	return func(r *Record) {
		if d < 0 {
			d = 0
		}
		r.Duration = d
	}
}

// Persistent disables the lifecycle timer. The caller is responsible for
// eventually dismissing the toast. Equivalent to WithDuration(0).
func Persistent() Option {
	return WithDuration(0)
}

// WithPosition anchors the toast to the given screen edge.
func WithPosition(p Position) Option {
	return func(r *Record) {
		r.Position = p
	}
}

// WithAction attaches an action control. Pressing it invokes onPress and
// then always dismisses the toast, independent of whether onPress succeeded.
// onPress may be nil when only the label matters (e.g. remote renderers).
func WithAction(label string, onPress func()) Option {
	return func(r *Record) {
		r.ActionLabel = label
		r.onPress = onPress
	}
}

// WithOnDismiss registers a callback invoked exactly once when the toast is
// removed, on whichever path removes it.
func WithOnDismiss(fn func()) Option {
	return func(r *Record) {
		r.onDismiss = fn
	}
}
