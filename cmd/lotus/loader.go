package main

import (
	"os"
	"path/filepath"
)

// fsLoader resolves module specifiers against the filesystem, the
// simplest ModuleLoader a host embedding vm.Runtime can supply (spec.md
// §6's "Module loader trait"). Absolute specifiers are used as they are;
// any other specifier, relative or bare, resolves against the referrer's
// directory, or against the process's working directory when there is
// no referrer.
type fsLoader struct{}

func (fsLoader) Resolve(specifier, referrer string) (string, error) {
	if filepath.IsAbs(specifier) {
		return filepath.Clean(specifier), nil
	}
	base := "."
	if referrer != "" {
		base = filepath.Dir(referrer)
	}
	return filepath.Clean(filepath.Join(base, specifier)), nil
}

func (fsLoader) Load(canonicalPath string) (string, error) {
	b, err := os.ReadFile(canonicalPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
