package render

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/seenimoa/newsense/internal/logger"
	"github.com/seenimoa/newsense/pkg/models"
)

// AudioExt is the extension of synthesized files.
const AudioExt = ".mp3"

// Term is one entry of the substitution table.
type Term struct {
	English string
	Spoken  string
}

// Terms maps domain words of the summary to Hindi, applied in order to the
// lowercase form of each English word. This is word substitution, not
// translation: the capitalised "Analysis" that opens the summary is left
// as it is.
var Terms = []Term{
	{"POSITIVE", "सकारात्मक"},
	{"NEGATIVE", "नकारात्मक"},
	{"NEUTRAL", "तटस्थ"},
	{"sentiment", "भावना"},
	{"articles", "लेख"},
	{"analysis", "विश्लेषण"},
	{"coverage", "कवरेज"},
}

// Substitute applies Terms to text.
func Substitute(text string) string {
	for _, t := range Terms {
		text = strings.ReplaceAll(text, strings.ToLower(t.English), t.Spoken)
	}
	return text
}

// AudioFilename is the content address of text: the first ten hex digits
// of its MD5 digest plus AudioExt.
func AudioFilename(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:10] + AudioExt
}

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// AudioRenderer synthesizes analysis summaries into a directory of
// content-addressed audio files.
type AudioRenderer struct {
	dir   string
	lang  string
	synth Synthesizer
	log   *slog.Logger
}

// NewAudioRenderer creates a renderer writing into dir.
func NewAudioRenderer(dir, lang string, synth Synthesizer, log *slog.Logger) *AudioRenderer {
	if dir == "" {
		dir = "audio_files"
	}
	if lang == "" {
		lang = "hi"
	}
	return &AudioRenderer{dir: dir, lang: lang, synth: synth, log: logger.OrDefault(log)}
}

// Dir is the audio directory.
func (r *AudioRenderer) Dir() string { return r.dir }

// RenderAudio returns the path of the audio rendition of a's summary, or ""
// when it could not be produced. An existing file for the same text is
// reused without synthesis.
func (r *AudioRenderer) RenderAudio(ctx context.Context, a *models.AggregateAnalysis) string {
	if a == nil || strings.TrimSpace(a.Summary) == "" {
		return ""
	}
	text := Substitute(a.Summary)
	path := filepath.Join(r.dir, AudioFilename(text))
	log := r.log.With("file", path)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		log.Debug("audio cache hit")
		return path
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("audio cache check failed", "error", err)
	}

	if err := r.synthesize(ctx, text, path); err != nil {
		log.Warn("audio generation failed", "error", err)
		return ""
	}
	log.Info("audio generated")
	return path
}

func (r *AudioRenderer) synthesize(ctx context.Context, text, path string) error {
	if r.synth == nil {
		return errors.New("no speech synthesizer configured")
	}
	audio, err := r.synth.Synthesize(ctx, text, r.lang)
	if err != nil {
		return err
	}
	if len(audio) == 0 {
		return errors.New("speech synthesizer returned no audio")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	return writeFileAtomic(path, audio)
}
