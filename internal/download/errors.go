package download

import (
	"fmt"

	"github.com/handiism/spotify-dl/internal/model"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageMetadata Stage = "metadata"
	StageStream   Stage = "stream"
	StageEncode   Stage = "encode"
	StageWrite    Stage = "write"
	StageTag      Stage = "tag"
)

// PipelineError is the failure of one track's pipeline.
type PipelineError struct {
	Stage Stage
	Track model.TrackID
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Track, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
