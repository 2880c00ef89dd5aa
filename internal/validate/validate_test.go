package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

func TestCheck(t *testing.T) {
	v := New(100)

	tests := []struct {
		name    string
		upload  Upload
		wantErr error
	}{
		{
			name:   "valid in-memory pdf",
			upload: Upload{MediaType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
		{
			name:   "media type with parameters",
			upload: Upload{MediaType: "application/pdf; charset=binary", Data: []byte("%PDF-1.4")},
		},
		{
			name:   "legacy alias",
			upload: Upload{MediaType: "Application/X-PDF", Data: []byte("%PDF-1.4")},
		},
		{
			name:   "exactly at limit",
			upload: Upload{MediaType: "application/pdf", Size: 100, Data: []byte("x")},
		},
		{
			name:    "over limit",
			upload:  Upload{MediaType: "application/pdf", Size: 101, Data: []byte("x")},
			wantErr: errs.ErrTooLarge,
		},
		{
			name:    "wrong type",
			upload:  Upload{MediaType: "image/png", Data: []byte("x")},
			wantErr: errs.ErrWrongType,
		},
		{
			name:    "no type",
			upload:  Upload{Data: []byte("x")},
			wantErr: errs.ErrWrongType,
		},
		{
			name:    "nothing provided",
			upload:  Upload{MediaType: "application/pdf"},
			wantErr: errs.ErrMissing,
		},
		{
			name:    "missing path",
			upload:  Upload{MediaType: "application/pdf", Path: filepath.Join(t.TempDir(), "nope.pdf")},
			wantErr: errs.ErrMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(tt.upload)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestCheckUsesSizeOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(path, make([]byte, 200), 0o644))

	v := New(100)
	// Declared size is ignored in favor of the real size.
	err := v.Check(Upload{MediaType: "application/pdf", Path: path, Size: 10})
	assert.ErrorIs(t, err, errs.ErrTooLarge)

	small := filepath.Join(dir, "small.pdf")
	require.NoError(t, os.WriteFile(small, make([]byte, 50), 0o644))
	assert.NoError(t, v.Check(Upload{MediaType: "application/pdf", Path: small}))
}

func TestCheckDirectory(t *testing.T) {
	v := New(0)
	err := v.Check(Upload{MediaType: "application/pdf", Path: t.TempDir()})
	assert.ErrorIs(t, err, errs.ErrMissing)
}

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, DefaultMaxBytes, New(0).MaxBytes)
	assert.Equal(t, int64(50*1024*1024), DefaultMaxBytes)
}

func TestCheckAll(t *testing.T) {
	v := New(0)
	ok := Upload{MediaType: "application/pdf", Data: []byte("%PDF")}
	bad := Upload{MediaType: "text/plain", Data: []byte("hi")}
	assert.NoError(t, v.CheckAll([]Upload{ok, ok}))
	assert.ErrorIs(t, v.CheckAll([]Upload{ok, bad}), errs.ErrWrongType)
}
