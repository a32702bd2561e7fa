package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// MaxHandles caps how many targets one campaign may have
	MaxHandles = 100
	// MaxFileBytes caps accepted CSV uploads
	MaxFileBytes = 5 * 1024 * 1024
)

// Reason classifies an ingestion failure
type Reason string

const (
	ReasonEmptyResult     Reason = "empty_result"
	ReasonTooManyHandles  Reason = "too_many_handles"
	ReasonUnsupportedFile Reason = "unsupported_file"
	ReasonFileTooLarge    Reason = "file_too_large"
)

// Error is a typed ingestion failure surfaced at the upload control
type Error struct {
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	handlePattern  = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)
	profilePattern = regexp.MustCompile(`instagram\.com/([a-zA-Z0-9._]+)`)
)

// Ingest extracts Instagram handles from CSV or pasted text. Handles are
// lowercased, deduplicated and kept in first-seen order. Lines that yield
// no valid handle are dropped silently.
func Ingest(raw string) ([]string, error) {
	seen := make(map[string]struct{})
	var handles []string

	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Only the first comma-delimited field carries the username
		field := line
		if idx := strings.Index(field, ","); idx >= 0 {
			field = field[:idx]
		}
		field = strings.TrimSpace(strings.Trim(strings.TrimSpace(field), `"`))

		// Header detection applies to the first line only
		if i == 0 && strings.Contains(strings.ToLower(field), "username") {
			continue
		}

		handle := strings.ToLower(extractHandle(field))
		if !handlePattern.MatchString(handle) {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}

	if len(handles) == 0 {
		return nil, &Error{Reason: ReasonEmptyResult, Message: "no valid usernames found in input"}
	}
	if len(handles) > MaxHandles {
		return nil, &Error{
			Reason:  ReasonTooManyHandles,
			Message: fmt.Sprintf("found %d usernames, limit is %d per campaign", len(handles), MaxHandles),
		}
	}
	return handles, nil
}

// IngestFile applies the upload checks before parsing the content
func IngestFile(name string, data []byte) ([]string, error) {
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return nil, &Error{Reason: ReasonUnsupportedFile, Message: "only .csv files are accepted"}
	}
	if len(data) > MaxFileBytes {
		return nil, &Error{
			Reason:  ReasonFileTooLarge,
			Message: fmt.Sprintf("file exceeds the %s limit", humanize.IBytes(MaxFileBytes)),
		}
	}
	return Ingest(string(data))
}

// extractHandle recognizes the three accepted shapes: a profile URL,
// an @handle, or a bare token
func extractHandle(field string) string {
	if m := profilePattern.FindStringSubmatch(field); m != nil {
		return m[1]
	}
	return strings.TrimPrefix(field, "@")
}
