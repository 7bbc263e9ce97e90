/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package manage

// Operation is one gig request. The set of variants is closed; Runner.Run
// handles each of them.
type Operation interface {
	isOperation()
}

// Build creates the managed region from names. An existing region is only
// replaced when Force is set.
type Build struct {
	Names []string
	Force bool
}

// Add appends one catalog schema to the region.
type Add struct {
	Name string
}

// AddUntracked records untracked, non-ignored files in the local
// "untracked" block.
type AddUntracked struct{}

// Update refreshes one block, or every catalog block when Name is empty.
type Update struct {
	Name string
}

// Remove drops one block.
type Remove struct {
	Name string
}

// List reports the schema names available in the catalog.
type List struct{}

// Status compares each block's recorded version with the catalog.
type Status struct{}

func (Build) isOperation()        {}
func (Add) isOperation()          {}
func (AddUntracked) isOperation() {}
func (Update) isOperation()       {}
func (Remove) isOperation()       {}
func (List) isOperation()         {}
func (Status) isOperation()       {}

// Name returns the command-style name of op.
func Name(op Operation) string {
	switch op.(type) {
	case Build:
		return "init"
	case Add:
		return "add"
	case AddUntracked:
		return "add-untracked"
	case Update:
		return "update"
	case Remove:
		return "remove"
	case List:
		return "list"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}
