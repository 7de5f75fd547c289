//go:build !mpi
// +build !mpi

package mpi

import (
	"errors"
)

// Enabled reports whether the binary was built with the "mpi" tag.
const Enabled = false

// ErrNoMPI is returned by Init in binaries built without the "mpi" tag.
var ErrNoMPI = errors.New("mpi: macrobunch was built without the 'mpi' " +
	"build tag")

// Init always fails without the "mpi" build tag.
func Init() error { return ErrNoMPI }

// Finalize does nothing without the "mpi" build tag.
func Finalize() error { return nil }

// World returns a single-process Comm without the "mpi" build tag.
func World() Comm { return Serial() }
