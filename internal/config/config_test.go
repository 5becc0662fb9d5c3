package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const validConfig = `
odoo:
  url: http://localhost:8069/
  master_password: admin1
  database: adel
backup:
  upload_targets:
    - type: gdrive
      enabled: true
      credentials_path: /opt
      folder_id: folder-123
    - type: local
      name: archive
      enabled: true
      path: /var/backups/odoo
      max_backups: 5
    - type: s3
      enabled: false
`

func writeConfig(dir, content string) string {
	path := filepath.Join(dir, "config.yaml")
	So(os.WriteFile(path, []byte(content), 0644), ShouldBeNil)
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a config file", t, func() {
		tempDir, err := os.MkdirTemp("", "config_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When the file is valid", func() {
			cfg, err := Load(writeConfig(tempDir, validConfig))

			Convey("It should apply defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.App.Name, ShouldEqual, "odoodrive")
				So(cfg.App.LogLevel, ShouldEqual, "info")
				So(cfg.Backup.TempDir, ShouldEqual, "/tmp")
				So(cfg.Backup.Format, ShouldEqual, "zip")
				So(cfg.Backup.MaxBackups, ShouldEqual, 2)
				So(cfg.Backup.Verify, ShouldBeTrue)
				So(cfg.Odoo.Timeout, ShouldEqual, time.Duration(0))
			})

			Convey("It should trim the trailing slash of the server URL", func() {
				So(cfg.Odoo.URL, ShouldEqual, "http://localhost:8069")
			})

			Convey("It should only return enabled targets", func() {
				targets := cfg.GetEnabledUploadTargets()
				So(len(targets), ShouldEqual, 2)
				So(targets[0].DisplayName(), ShouldEqual, "gdrive")
				So(targets[1].DisplayName(), ShouldEqual, "archive")
			})

			Convey("It should resolve retention per target", func() {
				targets := cfg.GetEnabledUploadTargets()
				So(cfg.RetentionFor(targets[0]), ShouldEqual, 2)
				So(cfg.RetentionFor(targets[1]), ShouldEqual, 5)
			})

			Convey("It should locate the service account key", func() {
				targets := cfg.GetEnabledUploadTargets()
				So(targets[0].CredentialsFilePath(), ShouldEqual, "/opt/credentials.json")
			})
		})

		Convey("When secrets come from the environment", func() {
			content := `
odoo:
  url: http://localhost:8069
  database: adel
backup:
  upload_targets:
    - type: local
      enabled: true
      path: /var/backups/odoo
`
			os.Setenv("ODOODRIVE_ODOO_MASTER_PASSWORD", "from-env")
			defer os.Unsetenv("ODOODRIVE_ODOO_MASTER_PASSWORD")

			cfg, err := Load(writeConfig(tempDir, content))

			Convey("It should use the environment value", func() {
				So(err, ShouldBeNil)
				So(cfg.Odoo.MasterPassword, ShouldEqual, "from-env")
			})
		})

		Convey("When the master password is missing", func() {
			content := `
odoo:
  url: http://localhost:8069
  database: adel
backup:
  upload_targets:
    - type: local
      enabled: true
      path: /tmp/out
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "odoo.master_password is required")
			})
		})

		Convey("When no target is enabled", func() {
			content := `
odoo:
  url: http://localhost:8069
  master_password: admin1
  database: adel
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "at least one enabled upload target")
			})
		})

		Convey("When the retention count is not positive", func() {
			content := `
odoo:
  url: http://localhost:8069
  master_password: admin1
  database: adel
backup:
  upload_targets:
    - type: local
      enabled: true
      path: /tmp/out
      max_backups: 0
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "max_backups must be a positive integer")
			})
		})

		Convey("When a gdrive target has no folder", func() {
			content := `
odoo:
  url: http://localhost:8069
  master_password: admin1
  database: adel
backup:
  upload_targets:
    - type: gdrive
      enabled: true
      credentials_path: /opt
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "folder_id is required")
			})
		})

		Convey("When a local target points at the temp directory", func() {
			content := `
odoo:
  url: http://localhost:8069
  master_password: admin1
  database: adel
backup:
  temp_dir: /tmp/odoo
  upload_targets:
    - type: local
      enabled: true
      path: /tmp/odoo/
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "path must differ from backup.temp_dir")
			})
		})

		Convey("When the backup format is unknown", func() {
			content := `
odoo:
  url: http://localhost:8069
  master_password: admin1
  database: adel
backup:
  format: tar
  upload_targets:
    - type: local
      enabled: true
      path: /tmp/out
`
			_, err := Load(writeConfig(tempDir, content))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "backup.format must be zip or dump")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := Load(filepath.Join(tempDir, "missing.yaml"))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to read config")
			})
		})
	})
}

func TestValidateSchedule(t *testing.T) {
	Convey("Given a config", t, func() {
		cfg := &Config{}

		Convey("An empty schedule is rejected", func() {
			So(cfg.ValidateSchedule(), ShouldNotBeNil)
		})

		Convey("A five-field schedule is accepted", func() {
			cfg.Backup.Schedule = "0 2 * * *"
			So(cfg.ValidateSchedule(), ShouldBeNil)
		})

		Convey("A six-field schedule is accepted", func() {
			cfg.Backup.Schedule = "0 0 2 * * *"
			So(cfg.ValidateSchedule(), ShouldBeNil)
		})

		Convey("A descriptor is accepted", func() {
			cfg.Backup.Schedule = "@daily"
			So(cfg.ValidateSchedule(), ShouldBeNil)
		})

		Convey("Garbage is rejected", func() {
			cfg.Backup.Schedule = "every night"
			So(cfg.ValidateSchedule(), ShouldNotBeNil)
		})
	})
}
