package types

import "fmt"

// FileNotFoundError indicates the source path does not reference an
// existing regular file at intake time
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found at path: %s", e.Path)
}

// FileTooLargeError indicates the source file exceeds the configured maximum
type FileTooLargeError struct {
	Size int64
	Max  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file is %d bytes, exceeds maximum of %d bytes", e.Size, e.Max)
}

// UnsafeFileNameError indicates the sanitized file name carries a
// denylisted executable extension
type UnsafeFileNameError struct {
	Name string
}

func (e *UnsafeFileNameError) Error() string {
	return fmt.Sprintf("file name %q has a forbidden extension", e.Name)
}

// DiskNotConfiguredError indicates a disk key that is absent from the
// disk registry
type DiskNotConfiguredError struct {
	Disk string
}

func (e *DiskNotConfiguredError) Error() string {
	return fmt.Sprintf("disk %q is not configured", e.Disk)
}

// CollectionRestrictedError indicates a store into a collection whose
// curator-type restriction does not match the caller's curator
type CollectionRestrictedError struct {
	Collection  string
	CuratorType string
}

func (e *CollectionRestrictedError) Error() string {
	return fmt.Sprintf("collection %q only accepts curators of type %q", e.Collection, e.CuratorType)
}

// AnonymousNotAllowedError indicates an anonymous store into a registered
// collection that requires a curator
type AnonymousNotAllowedError struct {
	Collection string
}

func (e *AnonymousNotAllowedError) Error() string {
	return fmt.Sprintf("collection %q does not accept anonymous media", e.Collection)
}
