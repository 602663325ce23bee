package models

import (
	"errors"
	"fmt"
)

var (
	ErrTransportFailure    = errors.New("transport failure")
	ErrMalformedSubmission = errors.New("malformed submission")
	ErrIncompleteUpload    = errors.New("incomplete upload")
	ErrWriteFailure        = errors.New("write failure")
	ErrFinalizeInProgress  = errors.New("finalize already in progress")
	ErrNothingToFinalize   = errors.New("nothing to finalize")
)

// IncompleteUploadError 合并时发现的第一个缺失分片
type IncompleteUploadError struct {
	Missing int
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("incomplete upload: missing chunk %d", e.Missing)
}

func (e *IncompleteUploadError) Is(target error) bool {
	return target == ErrIncompleteUpload
}

// MissingIndex 从 err 中取出缺失的分片
func MissingIndex(err error) (int, bool) {
	var incomplete *IncompleteUploadError
	if errors.As(err, &incomplete) {
		return incomplete.Missing, true
	}
	return 0, false
}
