package detection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/infrastructure/vectorindex"
)

// Template file names inside a language directory
const (
	WinTemplate  = "win.png"
	LostTemplate = "lost.png"
)

// Labeled template directories shared by every language
const (
	MessageTemplateDir    = "message"
	PokemonTemplateDir    = "pokemon"
	NameWindowTemplateDir = "name_window"
)

var screenTemplates = map[detection.Detector]string{
	detection.StandingBy:   "standing_by.png",
	detection.Level50:      "level_50.png",
	detection.FirstRanking: "first_ranking.png",
	detection.Ranking:      "ranking.png",
	detection.SelectDone:   "select_done.png",
}

var ordinalTemplates = [3]string{"first.png", "second.png", "third.png"}

// ErrMissingTemplate is returned when an expected template file is absent
var ErrMissingTemplate = errors.New("template file not found")

// Assets locates the reference images of one UI language. Templates are
// captured at 720p and resized to the active profile when loaded.
type Assets struct {
	Dir      string
	Language string
}

// ScreenTemplate returns the template path of a template-gated detector
func (a Assets) ScreenTemplate(d detection.Detector) (string, bool) {
	name, ok := screenTemplates[d]
	if !ok {
		return "", false
	}
	return filepath.Join(a.Dir, a.Language, name), true
}

// OutcomeTemplates returns the win and lost banner paths
func (a Assets) OutcomeTemplates() (win, lost string) {
	return filepath.Join(a.Dir, a.Language, WinTemplate), filepath.Join(a.Dir, a.Language, LostTemplate)
}

// OrdinalTemplates returns the first/second/third marker paths
func (a Assets) OrdinalTemplates() [3]string {
	var paths [3]string
	for i, name := range ordinalTemplates {
		paths[i] = filepath.Join(a.Dir, a.Language, name)
	}
	return paths
}

// Required lists every single-file template the classifier needs
func (a Assets) Required() []string {
	var paths []string
	for _, d := range detection.All {
		if p, ok := a.ScreenTemplate(d); ok {
			paths = append(paths, p)
		}
	}
	win, lost := a.OutcomeTemplates()
	paths = append(paths, win, lost)
	o := a.OrdinalTemplates()
	return append(paths, o[:]...)
}

// Verify checks that every required template exists
func (a Assets) Verify() error {
	for _, p := range a.Required() {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, p)
		}
	}
	return nil
}

// LabeledFile is a template whose file name is its label
type LabeledFile struct {
	Label string
	Path  string
}

// Labeled lists the PNG templates of a labeled directory in name order. A
// missing directory yields no templates.
func (a Assets) Labeled(kind string) ([]LabeledFile, error) {
	dir := filepath.Join(a.Dir, kind)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s templates: %w", kind, err)
	}

	var files []LabeledFile
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		files = append(files, LabeledFile{
			Label: strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Path:  filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Label < files[j].Label })
	return files, nil
}

// RankLanguage is the OCR model used for rank numbers in a UI language
func RankLanguage(language string) string {
	if language == "ja" {
		return "jpn"
	}
	return "eng"
}

// Options configures the detection engine
type Options struct {
	Profile Profile
	Assets  Assets

	NameTable        *recognition.NameTable
	NameLanguages    []string
	MessageLanguages []string

	// ClassifierModel and EmbeddingModel are ONNX files; empty disables them
	ClassifierModel      string
	ClassifierLabels     string
	ClassifierConfidence float64
	EmbeddingModel       string
	EmbeddingMaxDistance float64
	Index                *vectorindex.Index

	Sink recognition.UnknownSink
}

// Ordinals returns the ordinal texts of the configured language
func (o Options) Ordinals() (recognition.Ordinals, error) {
	ord, ok := recognition.DefaultOrdinals[o.Assets.Language]
	if !ok {
		return recognition.Ordinals{}, fmt.Errorf("%w: %q", recognition.ErrUnknownLanguage, o.Assets.Language)
	}
	return ord, nil
}
