package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const testConfig = `
app:
  log_level: error
odoo:
  url: %s
  master_password: admin1
  database: adel
backup:
  temp_dir: %s
  verify: false
  upload_targets:
%s
`

func TestRunCommand(t *testing.T) {
	Convey("Given an Odoo server and a config file", t, func() {
		tempDir, err := os.MkdirTemp("", "cmd_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		workDir := filepath.Join(tempDir, "work")
		archiveDir := filepath.Join(tempDir, "archive")
		So(os.MkdirAll(workDir, 0755), ShouldBeNil)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("PK archive"))
		}))
		defer server.Close()

		runCtx := func(ctx context.Context, targets string) error {
			path := filepath.Join(tempDir, "config.yaml")
			content := fmt.Sprintf(testConfig, server.URL, workDir, targets)
			So(os.WriteFile(path, []byte(content), 0644), ShouldBeNil)

			rootCmd.SetArgs([]string{"run", "--config", path})
			return Execute(ctx)
		}
		runWith := func(targets string) error {
			return runCtx(context.Background(), targets)
		}

		Convey("When every target accepts the archive", func() {
			err := runWith(`
    - type: local
      enabled: true
      path: ` + archiveDir)

			Convey("It should succeed and store the archive", func() {
				So(err, ShouldBeNil)
				entries, err := os.ReadDir(archiveDir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the run is interrupted", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := runCtx(ctx, `
    - type: local
      enabled: true
      path: `+archiveDir)

			Convey("It should fail and leave no temp file behind", func() {
				So(err, ShouldNotBeNil)
				entries, err := os.ReadDir(workDir)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})

		Convey("When a target fails to upload", func() {
			err := runWith(`
    - type: local
      enabled: true
      path: ` + archiveDir + `
    - type: gdrive
      enabled: true
      credentials_path: ` + filepath.Join(tempDir, "missing") + `
      folder_id: folder-123`)

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "upload to gdrive")
			})

			Convey("It should leave the work directory empty", func() {
				entries, err := os.ReadDir(workDir)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
