package types

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not_exists.yaml")
	basedir := filepath.Join(dir, "default_basedir")
	// The config file not exists, will use default config
	t.Setenv("GBROWSE_CONFIG_PATH", path)
	t.Setenv("GBROWSE_BASE_PATH", basedir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	expect := newDefaultConfig(basedir)

	if !reflect.DeepEqual(cfg, expect) {
		t.Fatalf("Unexpect config %+v, expect %+v", cfg, expect)
	}
	if cfg.Path != "" {
		t.Fatalf("Unexpect config path %q for a missing file", cfg.Path)
	}

	root, err := cfg.BrowseRootPath()
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if root != wd {
		t.Fatalf("Unexpect browse root %q, expect %q", root, wd)
	}

	mounts, err := cfg.Mounts()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(mounts, []string{wd}) {
		t.Fatalf("Unexpect mounts %v, expect %v", mounts, []string{wd})
	}
}

const testConfigYaml = `
listen: ":9000"
mounts:
  - "data"
  - "/srv/extra"
browseRoot: "data"
handlers:
  ".txt": text
  ".PNG": image
auth:
  username: admin
  password: "${GBROWSE_TEST_HASH}"
readTimeout: "20s"
openBoltTimeout: "1s"
zstd: true
debug: true
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	basedir := filepath.Join(dir, "basedir")

	t.Setenv("GBROWSE_CONFIG_PATH", path)
	t.Setenv("GBROWSE_BASE_PATH", basedir)
	t.Setenv("GBROWSE_TEST_HASH", "$2a$10$hash")

	err := os.WriteFile(path, []byte(testConfigYaml), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	expect := &Config{
		BaseDir: basedir,
		Path:    path,

		Listen: ":9000",

		MountDirs:  []string{"data", "/srv/extra"},
		BrowseRoot: "data",

		Handlers: Handlers{
			".txt": "text",
			".PNG": "image",
		},

		Auth: &AuthConfig{
			Username: "admin",
			Password: "$2a$10$hash",
		},

		PidFile: filepath.Join(basedir, "gbrowse.pid"),
		LogFile: filepath.Join(basedir, "logs", "gbrowse.log"),

		Debug: true,
		Zstd:  true,

		ReadTimeout:     time.Second * 20,
		WriteTimeout:    configDefaultWriteTimeout,
		OpenBoltTimeout: time.Second,

		ThumbnailSize: configDefaultThumbnailSize,
	}

	if !reflect.DeepEqual(cfg, expect) {
		t.Fatalf("Unexpect config %+v, expect %+v", cfg, expect)
	}

	mounts, err := cfg.Mounts()
	if err != nil {
		t.Fatal(err)
	}
	expectMounts := []string{filepath.Join(dir, "data"), "/srv/extra"}
	if !reflect.DeepEqual(mounts, expectMounts) {
		t.Fatalf("Unexpect mounts %v, expect %v", mounts, expectMounts)
	}

	root, err := cfg.BrowseRootPath()
	if err != nil {
		t.Fatal(err)
	}
	if root != expectMounts[0] {
		t.Fatalf("Unexpect browse root %q, expect %q", root, expectMounts[0])
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"browse root not mounted": "mounts: [\"a\"]\nbrowseRoot: \"b\"\n",
		"no mounts":               "mounts: []\n",
		"duration too small":      "mounts: [\".\"]\nreadTimeout: \"1ms\"\n",
		"duration too big":        "mounts: [\".\"]\nopenBoltTimeout: \"1h\"\n",
		"auth without password":   "mounts: [\".\"]\nauth:\n  username: admin\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			t.Setenv("GBROWSE_CONFIG_PATH", path)
			t.Setenv("GBROWSE_BASE_PATH", filepath.Join(dir, "basedir"))

			err := os.WriteFile(path, []byte(content), 0644)
			if err != nil {
				t.Fatal(err)
			}

			_, err = LoadConfig()
			if err == nil {
				t.Fatalf("Expect error for config %q", content)
			}
		})
	}
}
