// Package jsonio reads and writes JSON files.
package jsonio

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile encodes v as indented JSON and saves it as a file at name. An existing file is truncated.
func WriteFile(name string, v interface{}) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		return err
	}

	// Explicit close to ensure that all bytes have been flushed.
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file stream when serializing '%v': %v", name, err)
	}

	return nil
}

// ReadFile decodes the JSON file at name into v.
func ReadFile(name string, v interface{}) error {
	b, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
