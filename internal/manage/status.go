/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package manage

import (
	"errors"

	"github.com/fulmenhq/gig/pkg/catalog"
	"github.com/fulmenhq/gig/pkg/region"
)

// State classifies a block against the catalog.
type State string

const (
	StateCurrent  State = "current"
	StateOutdated State = "outdated"
	StateMissing  State = "missing"
	StateLocal    State = "local"
)

// BlockStatus is one row of `gig status`.
type BlockStatus struct {
	Name     string `json:"name" yaml:"name"`
	State    State  `json:"state" yaml:"state"`
	Recorded string `json:"recorded" yaml:"recorded"`
	Latest   string `json:"latest,omitempty" yaml:"latest,omitempty"`
}

func (r *Runner) blockStatus(b region.SchemaBlock, res *Result) BlockStatus {
	st := BlockStatus{Name: b.Name, Recorded: b.Version}
	if b.Local() {
		st.State = StateLocal
		return st
	}
	snip, err := r.Catalog.Resolve(b.Name)
	if err != nil {
		if !errors.Is(err, catalog.ErrSchemaNotFound) {
			res.warn(&region.ResolveError{Name: b.Name, Err: err})
		}
		st.State = StateMissing
		return st
	}
	st.Latest = snip.Version
	if snip.Version == b.Version {
		st.State = StateCurrent
	} else {
		st.State = StateOutdated
	}
	return st
}
