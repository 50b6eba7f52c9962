package edgectl

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provisioning failure by the stage that produced it.
type ErrorKind int

const (
	KindConfig ErrorKind = iota + 1
	KindDependency
	KindRender
	KindSupervisor
	KindDeploy
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindDependency:
		return "dependency"
	case KindRender:
		return "render"
	case KindSupervisor:
		return "supervisor"
	case KindDeploy:
		return "deploy"
	}
	return "unknown"
}

// StageError wraps an error with the provisioning stage that raised it. The
// first StageError anywhere in the sequence terminates the whole routine;
// there is no retry or fallback path.
type StageError struct {
	Kind ErrorKind
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErrorf(kind ErrorKind, format string, args ...any) error {
	return &StageError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the stage classification of err, or 0 for untagged errors.
func KindOf(err error) ErrorKind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
