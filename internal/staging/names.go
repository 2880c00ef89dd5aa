package staging

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Epistemic-Technology/pdf-tools/internal/errs"
)

// suffixLen is the number of hex digits of a UUID kept in each name
const suffixLen = 12

// Clock hands out strictly increasing UTC timestamps with nanosecond
// resolution. When the wall clock stalls or steps back, the next value is
// the previous one plus a nanosecond.
type Clock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewClock returns a Clock reading now; nil means time.Now
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// processClock is shared by every Stager in the process
var processClock = NewClock(nil)

// Next returns a timestamp later than every value returned before it
func (c *Clock) Next() time.Time {
	for {
		prev := c.last.Load()
		n := c.now().UTC().UnixNano()
		if n <= prev {
			n = prev + 1
		}
		if c.last.CompareAndSwap(prev, n) {
			return time.Unix(0, n).UTC()
		}
	}
}

func newSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}

// FormatName builds "{op}_{unix-nanos}_{suffix}.{ext}"
func FormatName(op string, ts time.Time, suffix, ext string) string {
	return fmt.Sprintf("%s_%d_%s.%s", op, ts.UTC().UnixNano(), suffix, strings.TrimPrefix(ext, "."))
}

// Name is the parsed form of a staged file name
type Name struct {
	Operation string
	Timestamp time.Time
	Suffix    string
	Ext       string
}

// ParseName splits a staged file name into its parts. The operation may
// itself contain underscores, so the name is parsed from the right.
func ParseName(name string) (Name, error) {
	invalid := &errs.Error{Kind: errs.KindValidation, Reason: errs.ReasonInvalidInput, Op: "parse_name", Msg: fmt.Sprintf("not a staged file name: %q", name)}

	if !validBase(name) {
		return Name{}, invalid
	}
	ext := filepath.Ext(name)
	if len(ext) < 2 {
		return Name{}, invalid
	}
	stem := strings.TrimSuffix(name, ext)

	i := strings.LastIndexByte(stem, '_')
	if i < 0 {
		return Name{}, invalid
	}
	suffix := stem[i+1:]
	stem = stem[:i]

	j := strings.LastIndexByte(stem, '_')
	if j <= 0 {
		return Name{}, invalid
	}
	nanos, err := strconv.ParseInt(stem[j+1:], 10, 64)
	if err != nil || nanos < 0 || suffix == "" {
		return Name{}, invalid
	}

	return Name{
		Operation: stem[:j],
		Timestamp: time.Unix(0, nanos).UTC(),
		Suffix:    suffix,
		Ext:       ext[1:],
	}, nil
}

// validBase reports whether name is a plain visible file name with no
// directory component. Temporary files are hidden and never valid.
func validBase(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	return !strings.HasPrefix(name, ".")
}
