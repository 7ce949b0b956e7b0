package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj to a deterministic text format, one entry
// per line:
//
//	name mode hash
//
// where hash is the blob, subtree or submodule commit hash selected by mode.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		mode := e.Mode
		if strings.TrimSpace(mode) == "" {
			mode = TreeModeFile
		}
		fmt.Fprintf(&buf, "%s %s %s\n", e.Name, mode, entryHash(e))
	}
	return buf.Bytes()
}

func entryHash(e TreeEntry) Hash {
	switch e.Mode {
	case TreeModeDir:
		return e.SubtreeHash
	case TreeModeSubmodule:
		return e.CommitHash
	default:
		return e.BlobHash
	}
}

// UnmarshalTree parses a TreeObj from its serialized form. Names may contain
// spaces, so mode and hash are taken from the end of the line.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		rest, hash, ok := cutLast(line)
		if !ok {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		name, mode, ok := cutLast(rest)
		if !ok || name == "" {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		e := TreeEntry{Name: name, Mode: mode}
		switch mode {
		case TreeModeDir:
			e.SubtreeHash = Hash(hash)
		case TreeModeSubmodule:
			e.CommitHash = Hash(hash)
		case TreeModeFile, TreeModeExecutable:
			e.BlobHash = Hash(hash)
		default:
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q", mode)
		}
		tr.Entries = append(tr.Entries, e)
	}
	return tr, nil
}

func cutLast(s string) (string, string, bool) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero or more)
//	author A
//	timestamp T
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	header, message, err := splitHeader(data, "commit")
	if err != nil {
		return nil, err
	}

	c := &CommitObj{Message: message}
	for _, line := range header {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// TagObj
// ---------------------------------------------------------------------------

// MarshalTagPayload serializes the signed portion of a TagObj:
//
//	object H
//	type T
//	tag NAME
//	tagger WHO TIMESTAMP TZ
//
//	message
func MarshalTagPayload(t *TagObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", t.TargetHash)
	fmt.Fprintf(&buf, "type %s\n", t.TargetType)
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	tz := t.Timezone
	if tz == "" {
		tz = "+0000"
	}
	fmt.Fprintf(&buf, "tagger %s %d %s\n", t.Tagger, t.Timestamp, tz)
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// MarshalTag serializes a TagObj. A non-empty signature is stored as a
// header after the tagger line and is excluded from MarshalTagPayload.
func MarshalTag(t *TagObj) []byte {
	payload := MarshalTagPayload(t)
	if strings.TrimSpace(t.Signature) == "" {
		return payload
	}
	idx := bytes.Index(payload, []byte("\n\n"))
	var buf bytes.Buffer
	buf.Write(payload[:idx+1])
	fmt.Fprintf(&buf, "signature %s\n", t.Signature)
	buf.Write(payload[idx+1:])
	return buf.Bytes()
}

// UnmarshalTag parses a TagObj from its serialized form.
func UnmarshalTag(data []byte) (*TagObj, error) {
	header, message, err := splitHeader(data, "tag")
	if err != nil {
		return nil, err
	}

	t := &TagObj{Message: message}
	for _, line := range header {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tag: malformed header line %q", line)
		}
		switch key {
		case "object":
			t.TargetHash = Hash(val)
		case "type":
			t.TargetType = ObjectType(val)
		case "tag":
			t.Name = val
		case "tagger":
			fields := strings.Fields(val)
			if len(fields) < 3 {
				return nil, fmt.Errorf("unmarshal tag: malformed tagger %q", val)
			}
			ts, err := strconv.ParseInt(fields[len(fields)-2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: bad timestamp %q: %w", fields[len(fields)-2], err)
			}
			t.Tagger = strings.Join(fields[:len(fields)-2], " ")
			t.Timestamp = ts
			t.Timezone = fields[len(fields)-1]
		case "signature":
			t.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	if t.TargetHash == "" || t.Name == "" {
		return nil, fmt.Errorf("unmarshal tag: object and tag headers are required")
	}
	return t, nil
}

func splitHeader(data []byte, kind string) ([]string, string, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, "", fmt.Errorf("unmarshal %s: missing header/message separator", kind)
	}
	return strings.Split(string(data[:idx]), "\n"), string(data[idx+2:]), nil
}
