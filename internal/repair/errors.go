package repair

import "errors"

var (
	// ErrParse indicates that a configuration file is not a JSON object.
	ErrParse = errors.New("failed to parse configuration file")

	// ErrNotObject indicates that a value which must hold an object holds
	// something else, so the step cannot edit below it.
	ErrNotObject = errors.New("expected a JSON object")

	// ErrBackup indicates that the pre-write backup could not be taken.
	// The original file is left untouched when this happens.
	ErrBackup = errors.New("failed to back up configuration file")

	// ErrWrite indicates that the patched document could not be written.
	ErrWrite = errors.New("failed to write configuration file")
)
