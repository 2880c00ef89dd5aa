package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same reason",
			err:    PageOutOfBounds("12", 5),
			target: ErrPageOutOfBounds,
			want:   true,
		},
		{
			name:   "different reason same kind",
			err:    InvalidRangeSyntax("abc"),
			target: ErrPageOutOfBounds,
			want:   false,
		},
		{
			name:   "kind only target",
			err:    InvalidRangeSyntax("abc"),
			target: &Error{Kind: KindRange},
			want:   true,
		},
		{
			name:   "wrapped",
			err:    fmt.Errorf("failed to split: %w", Validation(ReasonTooLarge, "too big")),
			target: ErrTooLarge,
			want:   true,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			target: ErrDecode,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindRange, KindOf(PageOutOfBounds("3", 2)))
	assert.Equal(t, KindStorage, KindOf(fmt.Errorf("wrapped: %w", Storage("stage", ReasonWrite, fs.ErrExist))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ReasonInvalidInput, ReasonOf(Validation(ReasonInvalidInput, "empty text")))
}

func TestErrorUnwrap(t *testing.T) {
	err := Operation("merge", ReasonDecode, fs.ErrInvalid)
	assert.True(t, errors.Is(err, fs.ErrInvalid))
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "merge: failed to process document")
}

func TestRangeErrorsCarryToken(t *testing.T) {
	err := PageOutOfBounds("1-10", 5)
	assert.Equal(t, "1-10", err.Token)
	assert.Equal(t, 5, err.PageCount)
	assert.Equal(t, "page 1-10 is out of bounds: document has 5 pages", err.Error())

	syn := InvalidRangeSyntax("abc")
	assert.Equal(t, "abc", syn.Token)
	assert.Equal(t, "RangeError", syn.Kind.String())
}
