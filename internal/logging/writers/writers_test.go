package writers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWriter(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	tests := []struct {
		name       string
		output     string
		wantType   WriterType
		shouldFail bool
	}{
		{name: "empty string defaults to stderr", output: "", wantType: WriterTypeStderr},
		{name: "stderr", output: "stderr", wantType: WriterTypeStderr},
		{name: "stdout", output: "stdout", wantType: WriterTypeStdout},
		{name: "file path", output: filepath.Join(tmpDir, "test.log"), wantType: WriterTypeFile},
		{name: "file protocol", output: "file://" + filepath.Join(tmpDir, "proto.log"), wantType: WriterTypeFile},
		{name: "unsupported format", output: "redis://localhost:6379", shouldFail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, err := CreateWriter(tt.output)
			if tt.shouldFail {
				require.Error(t, err)
				require.Nil(t, writer)
				return
			}

			require.NoError(t, err)
			switch tt.wantType {
			case WriterTypeStdout:
				assert.Equal(t, os.Stdout, writer)
			case WriterTypeStderr:
				assert.Equal(t, os.Stderr, writer)
			case WriterTypeFile:
				assert.NotEqual(t, os.Stdout, writer)
				assert.NotEqual(t, os.Stderr, writer)
				if closer, ok := writer.(interface{ Close() error }); ok {
					require.NoError(t, closer.Close())
				}
			}
		})
	}
}

func TestCreateStdioWriter(t *testing.T) {
	t.Parallel()

	_, err := CreateStdioWriter("stdout")
	require.ErrorIs(t, err, ErrStdoutReserved)

	w, err := CreateStdioWriter("")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
}

func TestCreateFileWriter(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	existing := filepath.Join(tmpDir, "existing.log")
	require.NoError(t, os.WriteFile(existing, []byte("existing content\n"), 0o644))

	for _, path := range []string{
		filepath.Join(tmpDir, "test.log"),
		filepath.Join(tmpDir, "nested", "dir", "test.log"),
		existing,
	} {
		t.Run(filepath.Base(filepath.Dir(path))+"/"+filepath.Base(path), func(t *testing.T) {
			writer, err := createFileWriter(path)
			require.NoError(t, err)

			_, err = writer.Write([]byte("test content\n"))
			require.NoError(t, err)
			if closer, ok := writer.(interface{ Close() error }); ok {
				require.NoError(t, closer.Close())
			}

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(content), "test content\n")
		})
	}

	t.Run("existing content is kept", func(t *testing.T) {
		content, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Contains(t, string(content), "existing content\n")
	})
}

func TestParseWriterType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		output   string
		expected WriterType
	}{
		{"", WriterTypeStderr},
		{"stderr", WriterTypeStderr},
		{"stdout", WriterTypeStdout},
		{"/var/log/app.log", WriterTypeFile},
		{"file:///var/log/app.log", WriterTypeFile},
		{"./logs/app.log", WriterTypeFile},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseWriterType(tt.output))
		})
	}
}
