package deploylist

import "fmt"

// FileAccessError reports a deploy list that could not be opened or read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("deploy list %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// TimeParseError reports an issue whose deploy time field holds an unparseable value.
type TimeParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("issue %s: invalid deploy time %q: %v", e.Key, e.Value, e.Err)
}

func (e *TimeParseError) Unwrap() error {
	return e.Err
}
