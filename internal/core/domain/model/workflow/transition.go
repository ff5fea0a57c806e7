package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Transition is one entry of an instance's history. Stage completions are
// recorded with From == To (Processing, or Paused when the stage
// finished after a pause was requested).
type Transition struct {
	ID     uuid.UUID `json:"id"`
	From   State     `json:"from"`
	To     State     `json:"to"`
	Stage  int       `json:"stage"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}
