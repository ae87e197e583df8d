// Package tags reads embedded audio metadata (ID3, MP4, FLAC, and Ogg
// comments) so registrations can report which recording was used as master.
package tags

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// Info is the subset of tag metadata songpatch reports.
type Info struct {
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Year     int    `json:"year,omitempty"`
	Format   string `json:"format,omitempty"`
	FileType string `json:"file_type,omitempty"`
}

// Empty reports whether no descriptive field was found.
func (i Info) Empty() bool {
	return i.Title == "" && i.Artist == "" && i.Album == ""
}

// Label renders "Artist - Title", falling back to whichever field is present.
func (i Info) Label() string {
	switch {
	case i.Artist != "" && i.Title != "":
		return i.Artist + " - " + i.Title
	case i.Title != "":
		return i.Title
	case i.Artist != "":
		return i.Artist
	default:
		return i.Album
	}
}

// Read returns the tags embedded in path. A file without tags yields an
// empty Info and no error.
func Read(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	md, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Info{}, nil
		}
		return Info{}, fmt.Errorf("read tags: %w", err)
	}
	return Info{
		Title:    strings.TrimSpace(md.Title()),
		Artist:   strings.TrimSpace(md.Artist()),
		Album:    strings.TrimSpace(md.Album()),
		Year:     md.Year(),
		Format:   string(md.Format()),
		FileType: string(md.FileType()),
	}, nil
}
