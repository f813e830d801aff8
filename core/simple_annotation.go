package core

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/huangsam/annofabcli/schema"
)

// simpleAnnotationFile is one {task_id}/{input_data_id}.json entry of a
// SimpleAnnotation directory or zip.
type simpleAnnotationFile struct {
	Path       string
	Annotation schema.SimpleAnnotation
}

// readSimpleAnnotations calls fn for every SimpleAnnotation JSON file under
// root, which is either a directory or a zip archive.
func readSimpleAnnotations(root string, fn func(simpleAnnotationFile) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return readSimpleAnnotationDir(root, fn)
	}
	return readSimpleAnnotationZip(root, fn)
}

func readSimpleAnnotationDir(root string, fn func(simpleAnnotationFile) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		f, err := decodeSimpleAnnotation(filepath.ToSlash(rel), b)
		if err != nil {
			return err
		}
		return fn(f)
	})
}

func readSimpleAnnotationZip(root string, fn func(simpleAnnotationFile) error) error {
	r, err := zip.OpenReader(root)
	if err != nil {
		return fmt.Errorf("%s is neither a directory nor a zip file: %w", root, err)
	}
	defer func() { _ = r.Close() }()

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !strings.HasSuffix(zf.Name, ".json") {
			continue
		}
		b, err := readZipEntry(zf)
		if err != nil {
			return err
		}
		f, err := decodeSimpleAnnotation(zf.Name, b)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func readZipEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// decodeSimpleAnnotation parses a file. Missing task and input data ids are
// taken from the {task_id}/{input_data_id}.json path.
func decodeSimpleAnnotation(p string, b []byte) (simpleAnnotationFile, error) {
	f := simpleAnnotationFile{Path: p}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&f.Annotation); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	if f.Annotation.TaskID == "" {
		f.Annotation.TaskID = path.Base(path.Dir(p))
	}
	if f.Annotation.InputDataID == "" {
		f.Annotation.InputDataID = strings.TrimSuffix(path.Base(p), ".json")
	}
	return f, nil
}
