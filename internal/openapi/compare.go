package openapi

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Change kinds.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
)

// Change describes an operation that appeared or disappeared.
type Change struct {
	Kind      string
	Operation string
}

// VersionBump classifies the change of info.version between two documents.
type VersionBump string

// Version bump kinds.
const (
	BumpNone       VersionBump = "none"
	BumpMajor      VersionBump = "major"
	BumpMinor      VersionBump = "minor"
	BumpPatch      VersionBump = "patch"
	BumpPrerelease VersionBump = "prerelease"
	BumpDowngrade  VersionBump = "downgrade"
	// BumpUnknown is used when either version is not valid semver.
	BumpUnknown VersionBump = "unknown"
)

// Comparison is the result of comparing two documents.
type Comparison struct {
	Changes     []Change
	OldVersion  string
	NewVersion  string
	VersionBump VersionBump
}

// Compare lists removed then added operations, both in sorted order, and
// classifies the version change.
func Compare(prev, curr *Document) Comparison {
	prevOps := toSet(prev.Operations)
	currOps := toSet(curr.Operations)

	var changes []Change

	for _, op := range prev.Operations {
		if !currOps[op] {
			changes = append(changes, Change{Kind: ChangeRemoved, Operation: op})
		}
	}

	for _, op := range curr.Operations {
		if !prevOps[op] {
			changes = append(changes, Change{Kind: ChangeAdded, Operation: op})
		}
	}

	return Comparison{
		Changes:     changes,
		OldVersion:  prev.Version,
		NewVersion:  curr.Version,
		VersionBump: ClassifyVersion(prev.Version, curr.Version),
	}
}

// ClassifyVersion compares two info.version strings as semantic versions.
func ClassifyVersion(oldVersion, newVersion string) VersionBump {
	if oldVersion == newVersion {
		return BumpNone
	}

	oldV, err := semver.NewVersion(oldVersion)
	if err != nil {
		return BumpUnknown
	}

	newV, err := semver.NewVersion(newVersion)
	if err != nil {
		return BumpUnknown
	}

	switch {
	case newV.Equal(oldV):
		return BumpNone
	case newV.LessThan(oldV):
		return BumpDowngrade
	case newV.Major() != oldV.Major():
		return BumpMajor
	case newV.Minor() != oldV.Minor():
		return BumpMinor
	case newV.Patch() != oldV.Patch():
		return BumpPatch
	default:
		return BumpPrerelease
	}
}

// Summary returns a one-line, human-readable description of changes.
func Summary(changes []Change) string {
	var added, removed int

	for _, c := range changes {
		switch c.Kind {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		}
	}

	if added == 0 && removed == 0 {
		return "no operation changes"
	}

	parts := make([]string, 0, 2)

	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d operation(s) added", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d operation(s) removed", removed))
	}

	return strings.Join(parts, ", ")
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}

	return set
}
