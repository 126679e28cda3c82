package app

import (
	"fmt"
	"io"
)

// Reporter receives the user-facing progress messages of a run.
type Reporter interface {
	Summary(column string, distinct int)
	Written(location string)
}

// TextReporter prints progress messages as plain text.
type TextReporter struct {
	W io.Writer
}

// Summary prints the distinct count of the summary column.
func (t TextReporter) Summary(_ string, distinct int) {
	_, _ = fmt.Fprintf(t.W, "The number of unique companies between all combined files is: `%d`\n", distinct)
}

// Written confirms where the merged output went.
func (t TextReporter) Written(location string) {
	_, _ = fmt.Fprintf(t.W, "Output file containing combined CSVs has been written to: `%s`\n", location)
}

type nopReporter struct{}

func (nopReporter) Summary(string, int) {}
func (nopReporter) Written(string)      {}
