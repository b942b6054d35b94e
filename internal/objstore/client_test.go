package objstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Endpoint:    "https://s3.example.com",
				AccessKeyID: "access-key",
				SecretKey:   "secret-key",
				BucketName:  "advisor-snapshots",
			},
			wantErr: false,
		},
		{
			name: "missing endpoint",
			cfg: Config{
				AccessKeyID: "access-key",
				SecretKey:   "secret-key",
				BucketName:  "advisor-snapshots",
			},
			wantErr: true,
		},
		{
			name: "missing access key",
			cfg: Config{
				Endpoint:   "https://s3.example.com",
				SecretKey:  "secret-key",
				BucketName: "advisor-snapshots",
			},
			wantErr: true,
		},
		{
			name: "missing bucket",
			cfg: Config{
				Endpoint:    "https://s3.example.com",
				AccessKeyID: "access-key",
				SecretKey:   "secret-key",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := New(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("New() should reject incomplete config")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if client == nil {
				t.Error("New() returned nil client")
			}
		})
	}
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "source.db")
	compressedPath := filepath.Join(tmpDir, "source.db.zst")
	decompressedPath := filepath.Join(tmpDir, "restored.db")

	testData := strings.Repeat("course catalog snapshot data ", 1000)
	if err := os.WriteFile(srcPath, []byte(testData), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if err := CompressFile(srcPath, compressedPath); err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}

	srcInfo, _ := os.Stat(srcPath)
	compressedInfo, err := os.Stat(compressedPath)
	if err != nil {
		t.Fatalf("compressed file not created: %v", err)
	}
	if compressedInfo.Size() >= srcInfo.Size() {
		t.Errorf("compressed size %d >= original %d for repetitive data", compressedInfo.Size(), srcInfo.Size())
	}

	f, err := os.Open(compressedPath)
	if err != nil {
		t.Fatalf("failed to open compressed file: %v", err)
	}
	defer f.Close()

	if err := DecompressStream(f, decompressedPath); err != nil {
		t.Fatalf("DecompressStream() error = %v", err)
	}

	restored, err := os.ReadFile(decompressedPath)
	if err != nil {
		t.Fatalf("failed to read decompressed file: %v", err)
	}
	if string(restored) != testData {
		t.Errorf("decompressed data mismatch: got %d bytes, want %d", len(restored), len(testData))
	}
}

func TestCompressFile_LargeData(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	srcPath := filepath.Join(tmpDir, "large.db")
	compressedPath := filepath.Join(tmpDir, "large.db.zst")
	decompressedPath := filepath.Join(tmpDir, "large_restored.db")

	// 1MB of structured data, similar in shape to a SQLite file
	testData := make([]byte, 1024*1024)
	for i := range testData {
		testData[i] = byte(i % 256)
	}
	if err := os.WriteFile(srcPath, testData, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if err := CompressFile(srcPath, compressedPath); err != nil {
		t.Fatalf("CompressFile() error = %v", err)
	}

	f, err := os.Open(compressedPath)
	if err != nil {
		t.Fatalf("failed to open compressed file: %v", err)
	}
	defer f.Close()

	if err := DecompressStream(f, decompressedPath); err != nil {
		t.Fatalf("DecompressStream() error = %v", err)
	}

	restored, err := os.ReadFile(decompressedPath)
	if err != nil {
		t.Fatalf("failed to read decompressed file: %v", err)
	}
	if !bytes.Equal(restored, testData) {
		t.Error("decompressed data does not match original")
	}
}

func TestCompressFile_Errors(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	if err := CompressFile("/nonexistent/path/file.db", filepath.Join(tmpDir, "out.zst")); err == nil {
		t.Error("expected error for non-existent source file")
	}

	srcPath := filepath.Join(tmpDir, "source.db")
	if err := os.WriteFile(srcPath, []byte("test"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if err := CompressFile(srcPath, "/nonexistent/dir/out.zst"); err == nil {
		t.Error("expected error for invalid destination path")
	}
}

func TestDecompressStream_InvalidData(t *testing.T) {
	t.Parallel()

	err := DecompressStream(strings.NewReader("this is not zstd data"), filepath.Join(t.TempDir(), "out.db"))
	if err == nil {
		t.Error("expected error for invalid zstd data")
	}
}
