// Package errs wraps github.com/cockroachdb/errors so that every layer
// attaches stack traces and messages the same way.
package errs

import (
    "fmt"
    "strings"

    cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
    if err == nil {
        return nil
    }
    return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
    if err == nil {
        return nil
    }
    return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
    return cr.New(msg)
}

// Mark tags err so that errors.Is(err, markErr) holds without changing its
// message.
func Mark(err error, markErr error) error {
    if err == nil {
        return markErr
    }
    return cr.Mark(err, markErr)
}

// Is reports whether err matches reference, following marks added by Mark
// as well as the Unwrap chain.  Use it for sentinels that may be marked.
func Is(err, reference error) bool {
    return cr.Is(err, reference)
}

// StackLines returns at most maxLines lines of the verbose rendering of err,
// which includes the recorded stack.
func StackLines(err error, maxLines int) []string {
    if err == nil {
        return nil
    }
    s := fmt.Sprintf("%+v", err)
    lines := strings.Split(s, "\n")
    if maxLines > 0 && len(lines) > maxLines {
        lines = lines[:maxLines]
    }
    return lines
}
