// Package ppd stages PostScript Printer Description files into the CUPS
// driver resources directory so lpadmin can resolve them by path.
package ppd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// MissingDriverError reports that the source PPD was not present or not
// readable on the endpoint.
type MissingDriverError struct {
	Path string
}

func (e *MissingDriverError) Error() string {
	return fmt.Sprintf("PPD file not found or not readable at %s", e.Path)
}

// StagingIOError reports a failed copy into the driver resources directory.
type StagingIOError struct {
	Path string
	Err  error
}

func (e *StagingIOError) Error() string {
	return fmt.Sprintf("could not stage PPD file at %s: %v", e.Path, e.Err)
}

func (e *StagingIOError) Unwrap() error {
	return e.Err
}

// Stage places the PPD file where the print subsystem expects drivers and
// returns the staged path. A same-named file already in place is replaced
// when overwrite is set, kept otherwise. PPD definitions are not versioned,
// so replacing in place is safe.
func Stage(src, resourcesDir string, overwrite bool) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", &MissingDriverError{Path: src}
	}
	f.Close()

	target := filepath.Join(resourcesDir, filepath.Base(src))

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			log.Printf("[INFO]: PPD already staged at %s, keeping existing file", target)
			return target, nil
		}
	}

	if src == target {
		log.Printf("[INFO]: PPD source is already the staged path %s", target)
		return target, nil
	}

	if _, err := os.Stat(resourcesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(resourcesDir, 0755); err != nil {
			return "", &StagingIOError{Path: resourcesDir, Err: err}
		}
	}

	if err := copyFile(src, target); err != nil {
		return "", &StagingIOError{Path: target, Err: err}
	}

	log.Printf("[INFO]: PPD staged at %s", target)
	return target, nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err := io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}

	// Flush file metadata to disk
	if err := destinationFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync destination file: %w", err)
	}

	return nil
}
