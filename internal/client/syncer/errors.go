package syncer

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
)

// PartialSyncFailure reports the collections that could not be refreshed.
// Collections not listed were replaced successfully; the failed ones keep
// their previous contents.
type PartialSyncFailure struct {
	Scope    models.Scope
	Failures map[models.Collection]error
}

// Failed lists the failed collections in sync order.
func (e *PartialSyncFailure) Failed() []models.Collection {
	var out []models.Collection
	for _, c := range models.Collections {
		if _, ok := e.Failures[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (e *PartialSyncFailure) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, c := range e.Failed() {
		parts = append(parts, fmt.Sprintf("%s: %v", c, e.Failures[c]))
	}
	return fmt.Sprintf("%s (%s): %s", common.ErrPartialSyncFailure, e.Scope, strings.Join(parts, "; "))
}

func (e *PartialSyncFailure) Is(target error) bool {
	return target == common.ErrPartialSyncFailure
}

func (e *PartialSyncFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, c := range e.Failed() {
		errs = append(errs, e.Failures[c])
	}
	return errs
}
