package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/pdf-tools/internal/logger"
	"github.com/Epistemic-Technology/pdf-tools/internal/pdftest"
	"github.com/Epistemic-Technology/pdf-tools/internal/staging"
	"github.com/Epistemic-Technology/pdf-tools/models"
)

func newHandler(t *testing.T) (*StagedResourceHandler, models.StagedFile, []byte) {
	t.Helper()
	stager, err := staging.New(t.TempDir(), nil, logger.NewNoOpLogger())
	require.NoError(t, err)

	data := pdftest.Build(pdftest.Sized(2, 100)...)
	files, err := stager.Stage(context.Background(), "merge", "pdf", staging.Payload{Data: data, Pages: 2})
	require.NoError(t, err)
	return NewStagedResourceHandler(stager), files[0], data
}

func TestReadResource_Blob(t *testing.T) {
	h, f, data := newHandler(t)

	result, err := h.ReadResource(context.Background(), f.URI())
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	c := result.Contents[0]
	assert.Equal(t, f.URI(), c.URI)
	assert.Equal(t, "application/pdf", c.MIMEType)
	assert.Equal(t, data, c.Blob)
}

func TestReadResource_Info(t *testing.T) {
	h, f, data := newHandler(t)

	result, err := h.ReadResource(context.Background(), f.URI()+"/info")
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var info models.StagedFile
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
	assert.Equal(t, f.Name, info.Name)
	assert.Equal(t, "merge", info.Operation)
	assert.Equal(t, int64(len(data)), info.Size)
	assert.True(t, f.CreatedAt.Equal(info.CreatedAt))
}

func TestReadResource_Errors(t *testing.T) {
	h, f, _ := newHandler(t)

	tests := []struct {
		name string
		uri  string
	}{
		{name: "wrong scheme", uri: "pdf://" + f.Name},
		{name: "missing name", uri: "staged://"},
		{name: "unknown file", uri: "staged://merge_1_abc.pdf"},
		{name: "traversal", uri: "staged://..%2Fsecret"},
		{name: "hidden file", uri: "staged://.staging-1.tmp"},
		{name: "unknown view", uri: f.URI() + "/pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ReadResource(context.Background(), tt.uri)
			assert.Error(t, err)
		})
	}
}
