// Package storage writes evaluation artifacts under an output directory.
package storage

import "time"

// Artifact describes one file under the output root.
type Artifact struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for artifact file operations. Paths are
// relative to the provider root.
type Provider interface {
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// List returns every regular file under the root with the given
	// extension, or all files when ext is empty.
	List(ext string) ([]Artifact, error)
}
