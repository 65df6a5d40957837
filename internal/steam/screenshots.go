package steam

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var screenshotExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Screenshot is one image file found under the screenshots directory.
type Screenshot struct {
	Path    string
	AppID   string
	ModTime time.Time
	Size    int64
}

// ScreenshotLister walks Steam's userdata tree, where screenshots live at
// <uid>/760/remote/<appid>/screenshots/<file>.
type ScreenshotLister struct {
	dir string
}

func NewScreenshotLister(dir string) *ScreenshotLister {
	return &ScreenshotLister{dir: dir}
}

// DefaultScreenshotsDir is Steam's userdata directory for the current user.
func DefaultScreenshotsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "Steam", "userdata")
}

// List returns image files newest first. A non-empty appID keeps only that game's screenshots.
// A missing directory yields an empty list.
func (l *ScreenshotLister) List(ctx context.Context, appID string) ([]Screenshot, error) {
	var shots []Screenshot

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// thumbnails duplicate every screenshot
			if d.Name() == "thumbnails" {
				return filepath.SkipDir
			}
			return nil
		}
		if !screenshotExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		owner := screenshotAppID(path)
		if appID != "" && owner != appID {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		shots = append(shots, Screenshot{Path: path, AppID: owner, ModTime: info.ModTime(), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(shots, func(i, j int) bool {
		return shots[i].ModTime.After(shots[j].ModTime)
	})
	return shots, nil
}

// screenshotAppID returns the <appid> segment of .../<appid>/screenshots/<file>.
func screenshotAppID(path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) != "screenshots" {
		return ""
	}
	return filepath.Base(filepath.Dir(dir))
}
