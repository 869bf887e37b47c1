package eventstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeIgnoresBadPayloads(t *testing.T) {
	s := Summarize([]Event{
		{BuildID: "b", Type: TypeBuildStarted, Payload: []byte("not json")},
		{BuildID: "b", Type: TypePageRendered, Payload: []byte("{}")},
		{BuildID: "b", Type: TypePageFailed, Payload: []byte("[")},
	})
	assert.Equal(t, "b", s.BuildID)
	assert.Equal(t, StatusRunning, s.Status)
	assert.Equal(t, 1, s.Pages)
	assert.Empty(t, s.FailedPages)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, "", s.BuildID)
	assert.Equal(t, StatusRunning, s.Status)
}
