package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const fakeSoffice = `#!/bin/sh
outdir=""
while [ $# -gt 1 ]; do
  if [ "$1" = "--outdir" ]; then outdir="$2"; shift; fi
  shift
done
base=$(basename "$1" .docx)
echo '%PDF-1.4 fake' > "$outdir/$base.pdf"
`

const failingSoffice = `#!/bin/sh
echo "source file could not be loaded" >&2
exit 3
`

const silentSoffice = `#!/bin/sh
exit 0
`

const slowSoffice = `#!/bin/sh
exec sleep 5
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "soffice")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "temp_20240101120000_abcd1234.docx")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))
	return path
}

func TestConvert_RenamesOutput(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{Binary: writeScript(t, fakeSoffice), ProfileRoot: t.TempDir()}, zaptest.NewLogger(t))

	pdf, err := c.Convert(context.Background(), writeInput(t, dir), dir, "proposal_X-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "proposal_X-1.pdf"), pdf)

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")

	_, err = os.Stat(filepath.Join(dir, "temp_20240101120000_abcd1234.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvert_KeepsNameWhenOutNameEmpty(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{Binary: writeScript(t, fakeSoffice), ProfileRoot: t.TempDir()}, zaptest.NewLogger(t))

	pdf, err := c.Convert(context.Background(), writeInput(t, dir), dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "temp_20240101120000_abcd1234.pdf"), pdf)
}

func TestConvert_Failures(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "non-zero exit", script: failingSoffice},
		{name: "no output", script: silentSoffice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := New(Config{Binary: writeScript(t, tt.script), ProfileRoot: t.TempDir()}, zaptest.NewLogger(t))

			_, err := c.Convert(context.Background(), writeInput(t, dir), dir, "out.pdf")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConversion))
		})
	}
}

func TestConvert_Timeout(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{
		Binary:      writeScript(t, slowSoffice),
		Timeout:     100 * time.Millisecond,
		ProfileRoot: t.TempDir(),
	}, zaptest.NewLogger(t))

	start := time.Now()
	_, err := c.Convert(context.Background(), writeInput(t, dir), dir, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestConvert_CallerDeadline(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{
		Binary:      writeScript(t, slowSoffice),
		Timeout:     time.Minute,
		ProfileRoot: t.TempDir(),
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := c.Convert(ctx, writeInput(t, dir), dir, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestConvert_WaitsForSlot(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{Binary: writeScript(t, fakeSoffice), MaxConcurrent: 1, ProfileRoot: t.TempDir()}, nil)

	require.NoError(t, c.sem.Acquire(context.Background(), 1))
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Convert(ctx, writeInput(t, dir), dir, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConversion))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCheck(t *testing.T) {
	c := New(Config{Binary: writeScript(t, fakeSoffice)}, nil)
	assert.NoError(t, c.Check(context.Background()))

	c = New(Config{Binary: "grantdoc-no-such-binary"}, nil)
	assert.Error(t, c.Check(context.Background()))
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, nil)
	assert.Equal(t, "soffice", c.Binary())
	assert.Equal(t, 60*time.Second, c.cfg.Timeout)
	assert.Equal(t, 2, c.cfg.MaxConcurrent)
}
