package synthesis

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
)

// One MPEG-1 Layer III frame at 128kbps/44.1kHz: 417 bytes, ~26.1ms of audio.
const (
	frameSize    = 417
	frameSeconds = 1152.0 / 44100.0
)

var frameHeader = []byte{0xFF, 0xFB, 0x90, 0x00}

// Render writes a silent MP3 of roughly the requested duration to path.
// Real text-to-speech is out of scope; the player only needs a valid,
// taggable, URL-addressable stream of the right length.
func Render(path string, duration float64) error {
	if duration <= 0 {
		return fmt.Errorf("narration duration must be positive, got %v", duration)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	frame := make([]byte, frameSize)
	copy(frame, frameHeader)

	frames := int(duration/frameSeconds) + 1
	for i := 0; i < frames; i++ {
		if _, err := f.Write(frame); err != nil {
			return err
		}
	}
	return nil
}

// Stamp writes the lecture's ID3 tags onto the narration file.
func Stamp(path, title, lecturer, album string) error {
	t, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer t.Close()

	t.SetTitle(title)
	t.SetArtist(lecturer)
	t.SetAlbum(album)

	return t.Save()
}

// Info is the subset of tags Verify reads back.
type Info struct {
	Title    string
	Lecturer string
	Album    string
	Format   string
}

// Verify re-reads the stamped file and returns its tags. A narration that
// cannot be parsed back is broken and must not be published.
func Verify(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return Info{}, fmt.Errorf("narration tags unreadable: %w", err)
	}

	return Info{
		Title:    meta.Title(),
		Lecturer: meta.Artist(),
		Album:    meta.Album(),
		Format:   string(meta.Format()),
	}, nil
}
