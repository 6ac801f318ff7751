package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// The transfer tool's progress output is treated as a fixed format: rsync
// 3.x with --progress prints either a bare continuation line for the file in
// flight or, for a new item, the item name followed by the same columns.
// There is no version negotiation; a format change is handled here.
const (
	ContinuationPattern = `^\s+([\d,]+)\s+(\d\d?\d?)%\s+(.+s)\s+([\d:]+).*`
	NewItemPattern      = `^\s*(.+\S)\s+([\d,]+)\s+(\d\d?\d?)%\s+(.+s)\s+([\d:]+).*`
)

var (
	continuationRe = regexp.MustCompile(ContinuationPattern)
	newItemRe      = regexp.MustCompile(NewItemPattern)
)

// ProgressKind tags the result of parsing one output line.
type ProgressKind int

const (
	Unrecognized ProgressKind = iota
	ContinuationUpdate
	NewItemHeader
)

// Progress is one parsed output line.
type Progress struct {
	Kind    ProgressKind
	Name    string
	Size    string
	Percent int
	Rate    string
	ETA     string
}

// ParseProgress classifies line. Continuation updates take precedence over
// new-item headers, which would otherwise also match them.
func ParseProgress(line string) Progress {
	if m := continuationRe.FindStringSubmatch(line); m != nil {
		return Progress{
			Kind:    ContinuationUpdate,
			Size:    m[1],
			Percent: parsePercent(m[2]),
			Rate:    m[3],
			ETA:     m[4],
		}
	}
	if m := newItemRe.FindStringSubmatch(line); m != nil {
		return Progress{
			Kind:    NewItemHeader,
			Name:    m[1],
			Size:    m[2],
			Percent: parsePercent(m[3]),
			Rate:    m[4],
			ETA:     m[5],
		}
	}
	return Progress{Kind: Unrecognized}
}

func parsePercent(s string) int {
	p, _ := strconv.Atoi(s)
	return min(max(p, 0), 100)
}

// StatusText renders the progress the way it is shown in a progress box.
func (p Progress) StatusText() string {
	size := humanSize(p.Size)
	if p.Kind == NewItemHeader {
		return fmt.Sprintf("FILE: %s SIZE: %s COMPLETE: %d%% RATE: %s ETA: %s", p.Name, size, p.Percent, p.Rate, p.ETA)
	}
	return fmt.Sprintf("SIZE: %s COMPLETE: %d%% RATE: %s ETA: %s", size, p.Percent, p.Rate, p.ETA)
}

// humanSize turns "1,234,567" into "1.2 MB". Unparseable input is returned
// unchanged.
func humanSize(raw string) string {
	n, err := strconv.ParseUint(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return raw
	}
	return humanize.Bytes(n)
}
