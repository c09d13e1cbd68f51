package desktop

import "io"

// Sound effects played while moving windows.
const (
	SoundDragStart = "drag-start"
	SoundDragEnd   = "drag-end"
)

// Sound plays interaction feedback.
type Sound interface {
	Play(effect string)
}

// Bell rings the terminal bell on W for every effect.
type Bell struct {
	W io.Writer
}

// Play writes BEL.
func (b Bell) Play(string) {
	if b.W != nil {
		_, _ = io.WriteString(b.W, "\a")
	}
}

// WithSound plays s when a window drag starts and ends.
func WithSound(s Sound) Option {
	return func(d *Desktop) { d.sound = s }
}

func (d *Desktop) play(effect string) {
	if d.sound != nil {
		d.sound.Play(effect)
	}
}

func (d *Desktop) dragStarted() {
	d.interactionStarted()
	d.play(SoundDragStart)
}

func (d *Desktop) dragEnded() {
	d.interactionEnded()
	d.play(SoundDragEnd)
}
