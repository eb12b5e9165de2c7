package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseConfigured reports whether report output mirroring is enabled.
func SupabaseConfigured() bool {
	return os.Getenv("SUPABASE_URL") != "" && os.Getenv("SUPABASE_KEY") != ""
}

// UploadReportToSupabase mirrors a generated report file to Supabase Storage
// under reports/<jobID>.<ext> and returns its public URL.
func UploadReportToSupabase(localPath, jobID string) (string, error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(localPath)
	objectPath := fmt.Sprintf("reports/%s%s", jobID, ext)

	contentType := "application/octet-stream"
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	_, err = storageClient.UploadFile("uploads", objectPath, bytes.NewReader(data), options)
	if err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/uploads/%s", supabaseURL, objectPath)
	return publicURL, nil
}
