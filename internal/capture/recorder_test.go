package capture

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorder_CapturesPerCase(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr

	r := NewRecorder()
	r.Install()
	defer r.Uninstall()

	stdout, stderr, err := r.Capture(func() error {
		fmt.Println("hello from the test")
		fmt.Fprintln(os.Stderr, "warning line")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "hello from the test\n", stdout)
	require.Equal(t, "warning line\n", stderr)

	r.Uninstall()
	require.Same(t, origOut, os.Stdout)
	require.Same(t, origErr, os.Stderr)
}

func TestRecorder_CasesAreIsolated(t *testing.T) {
	r := NewRecorder()
	r.Install()
	defer r.Uninstall()

	first, _, err := r.Capture(func() error {
		fmt.Println("first")
		return nil
	})
	require.NoError(t, err)
	second, _, err := r.Capture(func() error {
		fmt.Println("second")
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, "first\n", first)
	require.Equal(t, "second\n", second)
}

func TestRecorder_BeginTwiceDiscardsOpenCase(t *testing.T) {
	r := NewRecorder()
	r.Install()
	defer r.Uninstall()

	r.BeginCase()
	fmt.Println("lost")
	r.BeginCase()
	fmt.Println("kept")
	stdout, _ := r.EndCase()

	require.Equal(t, "kept\n", stdout)
}

func TestRecorder_NotInstalledIsInert(t *testing.T) {
	origOut := os.Stdout

	r := NewRecorder()
	r.BeginCase()
	require.Same(t, origOut, os.Stdout)
	stdout, stderr := r.EndCase()
	require.Empty(t, stdout)
	require.Empty(t, stderr)
}

func TestRecorder_UninstallIdempotent(t *testing.T) {
	r := NewRecorder()
	r.Uninstall()
	r.Uninstall()

	r.Install()
	r.Uninstall()
	r.Uninstall()
}

func TestRecorder_StreamsRestoredAfterPanic(t *testing.T) {
	origOut, origErr := os.Stdout, os.Stderr

	r := NewRecorder()
	r.Install()
	defer r.Uninstall()

	func() {
		defer func() { _ = recover() }()
		_, _, _ = r.Capture(func() error {
			fmt.Println("before the blast")
			panic("boom")
		})
	}()

	require.Same(t, origOut, os.Stdout)
	require.Same(t, origErr, os.Stderr)

	// and the recorder still works for the next case
	stdout, _, err := r.Capture(func() error {
		fmt.Println("recovered")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "recovered\n", stdout)
}

func TestRecorder_TailTruncation(t *testing.T) {
	r := NewRecorderWithLimit(16)
	r.Install()
	defer r.Uninstall()

	long := strings.Repeat("x", 40) + "END"
	stdout, _, err := r.Capture(func() error {
		fmt.Print(long)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, stdout, 16)
	require.True(t, strings.HasSuffix(stdout, "END"))
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer(8)
	_, err := b.Write([]byte("abcdefgh"))
	require.NoError(t, err)
	require.False(t, b.Truncated())

	_, err = b.Write([]byte("ij"))
	require.NoError(t, err)
	require.True(t, b.Truncated())
	require.Equal(t, "cdefghij", b.String())
}
