package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSubmodule  = "160000"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Exactly one of BlobHash,
// SubtreeHash or CommitHash is set depending on Mode.
type TreeEntry struct {
	Name        string
	Mode        string
	BlobHash    Hash
	SubtreeHash Hash
	CommitHash  Hash // submodule HEAD for gitlink entries
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool { return e.Mode == TreeModeDir }

// IsSubmodule reports whether the entry pins a nested repository.
func (e TreeEntry) IsSubmodule() bool { return e.Mode == TreeModeSubmodule }

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    string
	Timestamp int64
	Message   string
}

// TagObj is an annotated tag. Signature, when present, covers the payload
// produced by MarshalTagPayload.
type TagObj struct {
	TargetHash Hash
	TargetType ObjectType
	Name       string
	Tagger     string
	Timestamp  int64
	Timezone   string
	Message    string
	Signature  string
}
