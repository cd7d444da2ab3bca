package rclone

import (
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"

	"github.com/remocast/remocast/filesystem"
	"github.com/remocast/remocast/key"
)

func TestConfig(t *testing.T) {
	Convey("ConfigFromSettings", t, func() {
		viper.Set(key.RclonePath, "rclone")
		viper.Set(key.RcloneRemote, "gdrive")
		viper.Set(key.RcloneFolder, "media")
		viper.Set(key.RcloneMountPoint, "/mnt/gdrive")
		viper.Set(key.RcloneVfsCacheMode, "writes")
		viper.Set(key.RcloneAutoMount, true)

		config := ConfigFromSettings()

		So(config.Path, ShouldEqual, "rclone")
		So(config.remotePath(), ShouldEqual, "gdrive:media")
		So(config.MountPoint, ShouldEqual, "/mnt/gdrive")
		So(config.AutoMount, ShouldBeTrue)
	})
}

func TestMounted(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Mounted", t, func() {
		Convey("Is false for a missing mount point", func() {
			So(Mounted("/mnt/gdrive"), ShouldBeFalse)
		})

		Convey("Is true for an existing directory", func() {
			lo.Must0(filesystem.API().MkdirAll("/mnt/gdrive", 0755))

			So(Mounted("/mnt/gdrive"), ShouldBeTrue)
		})

		Convey("Is false for a plain file", func() {
			lo.Must0(filesystem.API().WriteFile("/mnt/file", []byte("x"), 0644))

			So(Mounted("/mnt/file"), ShouldBeFalse)
		})
	})
}

func TestWaitForMount(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("waitForMount", t, func() {
		Convey("Returns immediately once mounted", func() {
			lo.Must0(filesystem.API().MkdirAll("/mnt/gdrive", 0755))

			So(waitForMount("/mnt/gdrive", time.Second), ShouldBeNil)
		})

		Convey("Times out when the mount never appears", func() {
			err := waitForMount("/mnt/never", 10*time.Millisecond)

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "/mnt/never")
		})
	})
}

func TestCheckInstalled(t *testing.T) {
	Convey("CheckInstalled", t, func() {
		Convey("Fails for a nonexistent binary", func() {
			_, err := CheckInstalled("/nonexistent/rclone-binary")

			So(err, ShouldNotBeNil)
		})
	})
}
