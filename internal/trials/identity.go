package trials

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	// UnknownCoreConfig is displayed for files whose name does not parse.
	UnknownCoreConfig = "unknown"
	// UnknownProcesses is displayed for files whose name does not parse.
	UnknownProcesses = -1
)

// fileNamePattern matches output_<a>_<b>_<c>_<d>_<procs>_..._v<n>. The
// search is unanchored so prefixes and suffixes around the match are ignored.
var fileNamePattern = regexp.MustCompile(`output_((?:\d+_){3}\d+)_(\d+)_+v\d`)

// FileName is the metadata encoded in a result file name.
type FileName struct {
	// CoreConfig is the four-integer group, e.g. "2_2_2_3" (process grid
	// plus time steps).
	CoreConfig string
	Processes  int
}

// ParseFileName extracts the core configuration and process count from a
// result file name. ok is false when the name is not recognised.
func ParseFileName(name string) (FileName, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileName{}, false
	}
	procs, err := strconv.Atoi(m[2])
	if err != nil {
		return FileName{}, false
	}
	return FileName{CoreConfig: m[1], Processes: procs}, true
}

// Identity is the experiment key derived from a result file's path relative
// to its trial source directory.
type Identity struct {
	// Path is the slash-separated relative path the identity came from.
	Path string
	// Version is the directory part of Path, e.g. "v1".
	Version string
	File    FileName
	// Recognized reports whether the file name matched the naming pattern.
	Recognized bool
}

// IdentityFromPath splits rel into version directory and file name and
// parses the latter. Unrecognised names produce an Identity with
// Recognized=false rather than an error.
func IdentityFromPath(rel string) Identity {
	dir, file := path.Split(rel)
	if len(dir) > 1 {
		dir = strings.TrimRight(dir, "/")
	}
	id := Identity{
		Path:    rel,
		Version: strings.TrimSpace(dir),
	}
	id.File, id.Recognized = ParseFileName(file)
	return id
}

// ProcessesOrSentinel returns the process count, or UnknownProcesses.
func (id Identity) ProcessesOrSentinel() int {
	if !id.Recognized {
		return UnknownProcesses
	}
	return id.File.Processes
}

// CoreConfigLabel returns the core configuration, or UnknownCoreConfig.
func (id Identity) CoreConfigLabel() string {
	if !id.Recognized {
		return UnknownCoreConfig
	}
	return id.File.CoreConfig
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/np=%d", id.Version, id.CoreConfigLabel(), id.ProcessesOrSentinel())
}

// VersionRank returns the numeric part of a version tag such as "v2".
func VersionRank(version string) (int, bool) {
	if len(version) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(version[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
