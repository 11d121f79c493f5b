package models

import "fmt"

// Scope pins data to the account that was active when it was requested.
// Generation changes on every switch of the active pointer, so re-selecting
// the same account later still yields a different scope.
type Scope struct {
	UserID     string
	Generation uint64
}

func (s Scope) IsZero() bool { return s.UserID == "" }

func (s Scope) String() string {
	if s.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", s.UserID, s.Generation)
}
