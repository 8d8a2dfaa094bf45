package feedback

// #region type
// Type classifies a coaching message for display.
type Type string

const (
	Progress      Type = "progress"
	Correction    Type = "correction"
	Encouragement Type = "encouragement"
	Instruction   Type = "instruction"
	Warning       Type = "warning"
)

// #endregion type

// #region item
// Item is one coaching message. Items are observational only and never
// influence rep counting.
type Item struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// New builds an Item.
func New(t Type, msg string) Item {
	return Item{Type: t, Message: msg}
}

// #endregion item
