package normalize_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/crashpipe/api"
	"github.com/momentics/crashpipe/internal/normalize"
)

func TestFromError_ChainPreserved(t *testing.T) {
	for _, nested := range []int{0, 1, 3, 7} {
		err := errors.New("root cause")
		for i := 0; i < nested; i++ {
			err = fmt.Errorf("layer %d: %w", i, err)
		}
		rec, nerr := normalize.FromError(err, "crashpipe.go")
		require.NoError(t, nerr)
		assert.Equal(t, nested+1, rec.ChainLen(), "N nested causes must yield N+1 records")

		// Innermost record is the original cause.
		cur := rec
		for cur.Inner != nil {
			cur = cur.Inner
		}
		assert.Equal(t, "root cause", cur.Message)
	}
}

func TestFromError_OuterRecordHasStack(t *testing.T) {
	rec, err := normalize.FromError(errors.New("boom"), "crashpipe.go")
	require.NoError(t, err)
	require.NotEmpty(t, rec.StackTrace)
	assert.True(t, strings.HasPrefix(rec.StackTrace[0], "at "))
	assert.True(t, strings.HasSuffix(rec.StackTrace[0], "\n"))
	assert.Contains(t, rec.StackText(), "TestFromError_OuterRecordHasStack")
}

func TestFromError_Nil(t *testing.T) {
	_, err := normalize.FromError(nil, "crashpipe.go")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestFromError_KindIsTypeName(t *testing.T) {
	rec, err := normalize.FromError(&api.Error{Code: api.ErrCodeInternal, Message: "x"}, "crashpipe.go")
	require.NoError(t, err)
	assert.Equal(t, "api.Error", rec.Kind)
}

func TestFromLog_SeverityFilter(t *testing.T) {
	for _, sev := range []api.Severity{api.SeverityDebug, api.SeverityInfo, api.SeverityWarning} {
		_, err := normalize.FromLog("something happened", "at Foo", sev, "crashpipe.go")
		assert.ErrorIs(t, err, api.ErrSeverityFiltered, sev.String())
	}
	for _, sev := range []api.Severity{api.SeverityError, api.SeverityAssert} {
		_, err := normalize.FromLog("something happened", "at Foo", sev, "crashpipe.go")
		assert.NoError(t, err, sev.String())
	}
}

func TestFromLog_EmbeddedTrace(t *testing.T) {
	rec, err := normalize.FromLog("NullRef\nat Foo\nat Bar", "", api.SeverityError, "crashpipe.go")
	require.NoError(t, err)
	assert.Equal(t, "NullRef", rec.Message)
	assert.Equal(t, "at Foo\nat Bar\n", rec.StackText())
}

func TestFromLog_MessageNewlinesBecomeSpaces(t *testing.T) {
	rec, err := normalize.FromLog("first\nsecond", "Foo()\n\nBar()", api.SeverityError, "crashpipe.go")
	require.NoError(t, err)
	assert.Equal(t, "first second", rec.Message)
	assert.Equal(t, []string{"at Foo()\n", "at Bar()\n"}, rec.StackTrace)
}

func TestFromLog_BothEmpty(t *testing.T) {
	_, err := normalize.FromLog("", "", api.SeverityError, "crashpipe.go")
	assert.ErrorIs(t, err, api.ErrInvalidInput)
}

func TestFromPanic(t *testing.T) {
	rec := normalize.FromPanic("index out of range", "crashpipe.go")
	assert.Equal(t, "panic", rec.Kind)
	assert.Equal(t, "index out of range", rec.Message)
	assert.NotEmpty(t, rec.StackTrace)

	rec = normalize.FromPanic(errors.New("oops"), "crashpipe.go")
	assert.Equal(t, "panic: errors.errorString", rec.Kind)

	rec = normalize.FromPanic(nil, "crashpipe.go")
	assert.Equal(t, "unknown", rec.Kind)
	assert.Empty(t, rec.Message)
}

func TestMinimal(t *testing.T) {
	rec := normalize.Minimal("crashpipe.go")
	assert.Equal(t, "unknown", rec.Kind)
	assert.Empty(t, rec.Message)
	assert.Equal(t, 1, rec.ChainLen())
}
