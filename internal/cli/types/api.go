package types

// ErrorDetail is one field-level problem reported by the backend
type ErrorDetail struct {
	Loc []any  `json:"loc,omitempty"`
	Msg string `json:"msg,omitempty"`
}
