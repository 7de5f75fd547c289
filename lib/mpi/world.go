//go:build mpi
// +build mpi

package mpi

// The cgo header here is almost the same as the one used by
// github.com/marcusthierfelder/mpi, with changes to the compilation flags and
// error reporting. Here is his license:
//
// Copyright (c) 2017 Marcus Thierfelder
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// NOTE: Use
// $ mpicc --showme:compile
// $ mpicc --showme:link
// To figure out CFLAGS and LDFLAGS, respectively

/*
#cgo LDFLAGS: -pthread -L/usr/lib/x86_64-linux-gnu/openmpi/lib -lmpi
#cgo CFLAGS: -std=gnu99 -Wall -I/usr/lib/x86_64-linux-gnu/openmpi/include/openmpi -I/usr/lib/x86_64-linux-gnu/openmpi/include -pthread
#include <mpi.h>
#include <stdlib.h>

MPI_Comm get_MPI_COMM_WORLD() {
    return (MPI_Comm)(MPI_COMM_WORLD);
}

MPI_Datatype get_MPI_LONG_LONG() {
    return (MPI_Datatype)(MPI_LONG_LONG);
}

MPI_Op get_MPI_SUM() {
    return (MPI_Op)(MPI_SUM);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

var _ Comm = &world{}

// Enabled reports whether the binary was built with the "mpi" tag.
const Enabled = true

// world is a Comm backed by an MPI communicator.
type world struct {
	comm C.MPI_Comm
}

// Init initializes the MPI runtime. It must be called once, before World.
func Init() error {
	return processError(C.MPI_Init(nil, nil))
}

// Finalize shuts down the MPI runtime.
func Finalize() error {
	return processError(C.MPI_Finalize())
}

// World returns the Comm associated with MPI_COMM_WORLD.
func World() Comm {
	return &world{C.get_MPI_COMM_WORLD()}
}

// Rank and Size panic on MPI errors: they can only fail if the runtime was
// never initialized.

func (w *world) Rank() int {
	n := C.int(-1)
	if err := processError(C.MPI_Comm_rank(w.comm, &n)); err != nil {
		panic(err.Error())
	}
	return int(n)
}

func (w *world) Size() int {
	n := C.int(-1)
	if err := processError(C.MPI_Comm_size(w.comm, &n)); err != nil {
		panic(err.Error())
	}
	return int(n)
}

func (w *world) AllreduceSumInt(x int) (int, error) {
	send, recv := C.longlong(x), C.longlong(0)
	err := C.MPI_Allreduce(unsafe.Pointer(&send), unsafe.Pointer(&recv), 1,
		C.get_MPI_LONG_LONG(), C.get_MPI_SUM(), w.comm)
	if err := processError(err); err != nil {
		return 0, err
	}
	return int(recv), nil
}

// processError converts an MPI error code into a Go error.
func processError(err C.int) error {
	if err == 0 {
		return nil
	}

	buf := make([]C.char, C.MPI_MAX_ERROR_STRING)
	n := C.int(0)
	C.MPI_Error_string(err, &buf[0], &n)
	return fmt.Errorf("mpi: %s", C.GoString(&buf[0]))
}
