// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pipes

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Pair is one unidirectional pipe.
type Pair struct {
	Read  *os.File
	Write *os.File
}

// Fabric holds the three pipes of one relay session.
type Fabric struct {
	Input  Pair
	Output Pair
	Error  Pair
}

// ChildEnds are the endpoints the child owns, in the order they are
// rebound onto its standard streams.
type ChildEnds struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// ParentEnds are the endpoints the relay owns.
type ParentEnds struct {
	// Input is the write end of the child's stdin pipe.
	Input *os.File

	// Output is the read end of the child's stdout pipe.
	Output *os.File

	// Error is the read end of the child's stderr pipe.
	Error *os.File
}

// New allocates all three pipes. If any allocation fails, the pipes
// already created are released before returning.
func New() (*Fabric, error) {
	input, err := newPair("input", parentWrites)
	if err != nil {
		return nil, err
	}
	output, err := newPair("output", parentReads)
	if err != nil {
		input.close()
		return nil, err
	}
	errorPipe, err := newPair("error", parentReads)
	if err != nil {
		input.close()
		output.close()
		return nil, err
	}
	return &Fabric{Input: input, Output: output, Error: errorPipe}, nil
}

// Child returns the child's view of the fabric.
func (f *Fabric) Child() ChildEnds {
	return ChildEnds{
		Stdin:  f.Input.Read,
		Stdout: f.Output.Write,
		Stderr: f.Error.Write,
	}
}

// Parent returns the relay's view of the fabric.
func (f *Fabric) Parent() ParentEnds {
	return ParentEnds{
		Input:  f.Input.Write,
		Output: f.Output.Read,
		Error:  f.Error.Read,
	}
}

// Close releases every endpoint of the fabric. Endpoints that were
// already closed are skipped.
func (f *Fabric) Close() error {
	return errors.Join(f.Child().Close(), f.Parent().Close())
}

// Close releases the child's endpoints. Already-closed endpoints are
// not an error.
func (c ChildEnds) Close() error {
	return errors.Join(CloseEndpoint(c.Stdin), CloseEndpoint(c.Stdout), CloseEndpoint(c.Stderr))
}

// Close releases the relay's endpoints. Already-closed endpoints are
// not an error. Safe to call concurrently with reads on the output and
// error endpoints; those reads return os.ErrClosed.
func (p ParentEnds) Close() error {
	return errors.Join(CloseEndpoint(p.Input), CloseEndpoint(p.Output), CloseEndpoint(p.Error))
}

// CloseEndpoint closes file, treating nil and already-closed files as
// success.
func CloseEndpoint(file *os.File) error {
	if file == nil {
		return nil
	}
	if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

type parentSide int

const (
	parentReads parentSide = iota
	parentWrites
)

// newPair creates one close-on-exec pipe and makes the parent's end
// non-blocking before wrapping it, so os.NewFile registers it with the
// runtime poller.
func newPair(name string, side parentSide) (Pair, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return Pair{}, os.NewSyscallError("pipe2", err)
	}

	parentFD := fds[0]
	if side == parentWrites {
		parentFD = fds[1]
	}
	if err := unix.SetNonblock(parentFD, true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return Pair{}, os.NewSyscallError("fcntl", err)
	}

	return Pair{
		Read:  os.NewFile(uintptr(fds[0]), "|"+name+"-r"),
		Write: os.NewFile(uintptr(fds[1]), "|"+name+"-w"),
	}, nil
}

func (p Pair) close() {
	CloseEndpoint(p.Read)
	CloseEndpoint(p.Write)
}
