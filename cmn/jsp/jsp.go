// Package jsp provides typed JSON load/save with atomic-write semantics,
// the same role aistore's cmn/jsp plays for its cluster metadata: batch
// read-then-decode (faster than streaming for the schema sizes involved,
// per spec.md §4.4), and a write-to-temp-then-rename discipline so readers
// never observe a partially written file.
/*
 * Copyright (c) 2018-2020, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"io/ioutil"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads the whole file at path into memory and decodes it into a new
// *T. The caller gets a typed zero value's pointer back on success.
func Load[T any](path string) (*T, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &v, nil
}

// Exists reports whether path exists and is a regular file.
func Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// Save serializes v and writes it to path, creating parent directories as
// needed, via a temp-file-then-rename so a reader never observes a torn
// write (spec.md §3, §5's "install directory" / cache discipline applies
// here too).
func Save(path string, v interface{}, indent bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to serialize %s", path)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), ".jsp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Marshal and Unmarshal expose the shared jsoniter configuration for
// packages (manifest, config) that implement their own custom
// MarshalJSON/UnmarshalJSON and just need a consistent encoder underneath.
func Marshal(v interface{}) ([]byte, error)    { return json.Marshal(v) }
func Unmarshal(b []byte, v interface{}) error  { return json.Unmarshal(b, v) }
func MarshalIndent(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
