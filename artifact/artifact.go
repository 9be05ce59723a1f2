// Package artifact writes and reads the serialized model artifacts the
// evaluator and the external inference service load. Writes are atomic:
// a failed write never publishes a partial artifact.
package artifact

import (
	"fmt"
	"os"

	"github.com/oarkflow/json"
)

// SerializationError is fatal: the run that hit it is failed rather than
// allowed to publish a corrupt model.
type SerializationError struct {
	Op   string
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("artifact: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// WriteJSON marshals v and writes it via temp-file-and-rename.
func WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &SerializationError{Op: "marshal", Path: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &SerializationError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &SerializationError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// ReadJSON loads an artifact written by WriteJSON.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &SerializationError{Op: "read", Path: path, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &SerializationError{Op: "unmarshal", Path: path, Err: err}
	}
	return nil
}
