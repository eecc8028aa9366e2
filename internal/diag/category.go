package diag

// Category defines the importance of a diagnostic.
type Category uint8

const (
	// CategoryMessage is for informational diagnostics.
	CategoryMessage Category = iota
	// CategorySuggestion is for hints that never block compilation.
	CategorySuggestion
	// CategoryWarning is for warning diagnostics.
	CategoryWarning
	CategoryError
)

func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "message"
	case CategorySuggestion:
		return "suggestion"
	case CategoryWarning:
		return "warning"
	case CategoryError:
		return "error"
	}
	return "unknown"
}
