package repository

import "os"

// StoreOption applies a configuration option to the Store.
type StoreOption func(*Store)

// WithDirPerm sets the permission bits for created directories.
func WithDirPerm(perm os.FileMode) StoreOption {
	return func(s *Store) {
		if perm != 0 {
			s.dirPerm = perm
		}
	}
}

// WithFilePerm sets the permission bits for written files.
func WithFilePerm(perm os.FileMode) StoreOption {
	return func(s *Store) {
		if perm != 0 {
			s.filePerm = perm
		}
	}
}
