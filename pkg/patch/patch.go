package patch

// Sentinels recognised by the parser. They are matched case-sensitively at
// the start of a line.
const (
	BeginMarker      = "*** Begin Patch"
	EndMarker        = "*** End Patch"
	AddFilePrefix    = "*** Add File: "
	DeleteFilePrefix = "*** Delete File: "
	MoveFilePrefix   = "*** Move File To: "
	UpdateFilePrefix = "*** Update File: "
	EndOfFileMarker  = "*** End of File"
)

// SuccessMessage is returned by Process when every change was written.
const SuccessMessage = "Successfully applied patch"

// Action is the change a patch requests for one path. It is implemented by
// AddAction, DeleteAction and UpdateAction only.
type Action interface {
	isAction()
}

// AddAction creates a file with the given content.
type AddAction struct {
	Content string
}

// DeleteAction removes an existing file.
type DeleteAction struct{}

// UpdateAction edits an existing file and optionally renames it.
//
// Chunks are ordered by non-decreasing OrigIndex.
type UpdateAction struct {
	Chunks   []Chunk
	MovePath string
}

func (AddAction) isAction()    {}
func (DeleteAction) isAction() {}
func (UpdateAction) isAction() {}

// Chunk is one contiguous run of deletions and insertions anchored at
// OrigIndex in the original file's line slice.
type Chunk struct {
	OrigIndex int
	DelLines  []string
	InsLines  []string
}

// Patch maps each path to the action requested for it. Order lists the paths
// in the order their directives appeared.
type Patch struct {
	Actions map[string]Action
	Order   []string
}

func newPatch() *Patch {
	return &Patch{Actions: make(map[string]Action)}
}

func (p *Patch) add(path string, action Action) {
	p.Actions[path] = action
	p.Order = append(p.Order, path)
}

// Paths returns the paths touched by the patch in directive order.
func (p *Patch) Paths() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.Order...)
}

// ChangeType identifies the kind of FileChange in a Commit.
type ChangeType string

const (
	// ChangeAdd writes a new file.
	ChangeAdd ChangeType = "add"
	// ChangeDelete removes a file.
	ChangeDelete ChangeType = "delete"
	// ChangeUpdate rewrites a file, possibly at a new path.
	ChangeUpdate ChangeType = "update"
)

// FileChange is the resolved content change for one path.
type FileChange struct {
	Type       ChangeType
	OldContent string
	NewContent string
	MovePath   string
}

// Commit is the neutral description of a parsed patch: what every path should
// contain once the patch is applied.
type Commit struct {
	Changes map[string]FileChange
	Order   []string
}
