//go:build detection

package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"

	"gocv.io/x/gocv"
)

// ErrForeignFrame is returned for frames not decoded by VideoSource
var ErrForeignFrame = errors.New("frame was not decoded by this package")

// ErrNoEmbeddingModel is returned by Embed when no embedding model is configured
var ErrNoEmbeddingModel = errors.New("no embedding model configured")

// Engine classifies frames and reads every signal the pipeline extracts.
// Templates and models are loaded once by Open and never change.
type Engine struct {
	profile  Profile
	language string
	ordinals recognition.Ordinals

	screens      map[detection.Detector]gocv.Mat
	win          gocv.Mat
	lost         gocv.Mat
	ordinalMarks [3]gocv.Mat

	ocr      *Tesseract
	embedder *EmbeddingResolver
	pokemon  *recognition.Chain
	names    *recognition.NameReader
	messages *recognition.MessageReader

	closers []io.Closer
}

// Open loads templates, models and the OCR client for one profile and language
func Open(opts Options) (*Engine, error) {
	if err := opts.Assets.Verify(); err != nil {
		return nil, err
	}
	if opts.NameTable == nil {
		return nil, fmt.Errorf("name table is required")
	}
	ordinals, err := opts.Ordinals()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		profile:  opts.Profile,
		language: opts.Assets.Language,
		ordinals: ordinals,
		screens:  make(map[detection.Detector]gocv.Mat),
	}
	if err := e.load(opts); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) load(opts Options) error {
	scale := e.profile.Scale()
	strict := e.profile.Thresholds.Strict

	for _, d := range detection.All {
		path, ok := opts.Assets.ScreenTemplate(d)
		if !ok {
			continue
		}
		m, err := loadTemplate(path, scale)
		if err != nil {
			return err
		}
		e.screens[d] = m
	}

	var err error
	winPath, lostPath := opts.Assets.OutcomeTemplates()
	if e.win, err = loadTemplate(winPath, scale); err != nil {
		return err
	}
	if e.lost, err = loadTemplate(lostPath, scale); err != nil {
		return err
	}
	for i, path := range opts.Assets.OrdinalTemplates() {
		if e.ordinalMarks[i], err = loadTemplate(path, scale); err != nil {
			return err
		}
	}

	if e.ocr, err = NewTesseract(); err != nil {
		return err
	}
	e.closers = append(e.closers, e.ocr)

	var resolvers []recognition.Resolver
	if opts.ClassifierModel != "" {
		c, err := NewDNNClassifier(opts.ClassifierModel, opts.ClassifierLabels, opts.ClassifierConfidence)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, c)
		resolvers = append(resolvers, c)
	}
	if opts.EmbeddingModel != "" {
		r, err := NewEmbeddingResolver(opts.EmbeddingModel, opts.Index, opts.EmbeddingMaxDistance)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, r)
		e.embedder = r
		resolvers = append(resolvers, r)
	}

	pokemonTemplates, err := e.templateResolver(opts.Assets, PokemonTemplateDir, scale, strict)
	if err != nil {
		return err
	}
	resolvers = append(resolvers, pokemonTemplates)
	e.pokemon = recognition.NewChain("pokemon", opts.Sink, resolvers...)

	nameTemplates, err := e.templateResolver(opts.Assets, NameWindowTemplateDir, scale, strict)
	if err != nil {
		return err
	}
	nameChain := recognition.NewChain("name_window", opts.Sink, nameTemplates)
	e.names = recognition.NewNameReader(e.ocr, opts.NameTable, opts.NameLanguages, nameChain)

	messageTemplates, err := e.templateResolver(opts.Assets, MessageTemplateDir, scale, strict)
	if err != nil {
		return err
	}
	e.messages = recognition.NewMessageReader(e.ocr, opts.MessageLanguages, messageTemplates)
	return nil
}

func (e *Engine) templateResolver(a Assets, kind string, scale, minScore float64) (*TemplateResolver, error) {
	files, err := a.Labeled(kind)
	if err != nil {
		return nil, err
	}
	r, err := NewTemplateResolver(kind+"_template", files, scale, minScore)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, r)
	return r, nil
}

// Close releases every template, model and the OCR client
func (e *Engine) Close() error {
	for _, m := range e.screens {
		m.Close()
	}
	for _, m := range append([]gocv.Mat{e.win, e.lost}, e.ordinalMarks[:]...) {
		if m.Ptr() != nil {
			m.Close()
		}
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) frameMat(frame video.Frame) (gocv.Mat, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return gocv.Mat{}, ErrForeignFrame
	}
	if err := e.profile.CheckSize(f.Mat.Cols(), f.Mat.Rows()); err != nil {
		return gocv.Mat{}, err
	}
	return f.Mat, nil
}

// Analyze implements detection.Analyzer
func (e *Engine) Analyze(frame video.Frame) (detection.FrameAnalysis, error) {
	m, err := e.frameMat(frame)
	if err != nil {
		return detection.FrameAnalysis{}, err
	}
	gray := toGray(m)
	defer gray.Close()

	analysis := detection.FrameAnalysis{
		Frame:  frame.Index(),
		Scores: make(map[detection.Detector]float64, len(detection.All)),
	}
	for _, d := range detection.All {
		score, fired := e.evaluate(gray, d)
		analysis.Scores[d] = score
		if fired {
			analysis.Fired = append(analysis.Fired, d)
		}
	}
	return analysis, nil
}

// Classify implements detection.Classifier
func (e *Engine) Classify(frame video.Frame) ([]detection.Detector, error) {
	analysis, err := e.Analyze(frame)
	if err != nil {
		return nil, err
	}
	return analysis.Fired, nil
}

func (e *Engine) evaluate(gray gocv.Mat, d detection.Detector) (float64, bool) {
	th := e.profile.Thresholds

	switch d {
	case detection.StandingBy:
		s := e.score(gray, e.profile.StandingBy, e.screens[d])
		return s, s >= th.Template
	case detection.Level50:
		roi := gray.Region(e.profile.Level50.Rect())
		defer roi.Close()
		s := matchScore(roi, e.screens[d])
		return s, whitePixels(roi, th.Level50Binary) > th.Level50MinWhite && s >= th.Template
	case detection.FirstRanking:
		s := e.score(gray, e.profile.FirstRanking, e.screens[d])
		return s, s >= th.Template
	case detection.Ranking:
		s := e.score(gray, e.profile.Ranking, e.screens[d])
		return s, s >= th.Template
	case detection.WinOrLost:
		s := e.score(gray, e.profile.WinLost, e.win)
		if l := e.score(gray, e.profile.WinLost, e.lost); l > s {
			s = l
		}
		return s, s >= th.Strict
	case detection.SelectDone:
		s := e.score(gray, e.profile.SelectDone, e.screens[d])
		return s, s >= th.Template
	case detection.Message:
		return e.messageWindow(gray)
	}
	return 0, false
}

func (e *Engine) score(gray gocv.Mat, w Window, templ gocv.Mat) float64 {
	roi := gray.Region(w.Rect())
	defer roi.Close()
	return matchScore(roi, templ)
}

// messageWindow fires when the banner edge has a thin white band and the
// text area holds at least two stable regions. The score is 1 when it fires.
func (e *Engine) messageWindow(gray gocv.Mat) (float64, bool) {
	th := e.profile.Thresholds

	probe := gray.Region(e.profile.MessageProbe.Rect())
	white := whitePixels(probe, th.MessageWindowBinary)
	probe.Close()
	if white <= th.MessageWindowMinWhite || white >= th.MessageWindowMaxWhite {
		return 0, false
	}

	text := gray.Region(e.profile.Message.Rect())
	defer text.Close()
	mser := gocv.NewMSER()
	defer mser.Close()
	if len(mser.Detect(text)) < th.MSERMinRegions {
		return 0, false
	}
	return 1, true
}

// Rank reads the ladder rank shown on a ranking frame
func (e *Engine) Rank(ctx context.Context, frame video.Frame, first bool) (int, error) {
	w := e.profile.RankingNumber
	if first {
		w = e.profile.FirstRankingNumber
	}
	img, _, err := e.binaryCrop(frame, w, e.profile.Thresholds.RankBinary)
	if err != nil {
		return 0, err
	}
	text, err := e.ocr.Text(ctx, img, RankLanguage(e.language))
	if err != nil {
		return 0, err
	}
	return recognition.ParseRank(text)
}

// Outcome reads the win/lose banner of one frame
func (e *Engine) Outcome(ctx context.Context, frame video.Frame) (battle.Outcome, error) {
	m, err := e.frameMat(frame)
	if err != nil {
		return battle.Unknown, err
	}
	gray := toGray(m)
	defer gray.Close()

	win := e.score(gray, e.profile.WinLost, e.win)
	lost := e.score(gray, e.profile.WinLost, e.lost)
	return recognition.ClassifyOutcome(win, lost, e.profile.Thresholds.Strict), nil
}

// Selection reads the confirmed pick order as lineup slot indices
func (e *Engine) Selection(ctx context.Context, frame video.Frame) ([]int, error) {
	m, err := e.frameMat(frame)
	if err != nil {
		return nil, err
	}
	gray := toGray(m)
	defer gray.Close()

	readings := make([]recognition.SlotReading, len(e.profile.SelectNumbers))
	for i, w := range e.profile.SelectNumbers {
		roi := gray.Region(w.Rect())
		for k, mark := range e.ordinalMarks {
			readings[i].Scores[k] = matchScore(roi, mark)
		}
		img, _, err := binarize(roi, e.profile.Thresholds.SelectBinary)
		roi.Close()
		if err != nil {
			return nil, err
		}
		if readings[i].Text, err = e.ocr.Text(ctx, img, RankLanguage(e.language)); err != nil {
			return nil, err
		}
	}
	return recognition.SelectionOrder(readings, e.ordinals)
}

// Lineup identifies the six pokemon of each side on the standing-by screen
func (e *Engine) Lineup(ctx context.Context, frame video.Frame) (you, opponent []recognition.Identity, err error) {
	m, err := e.frameMat(frame)
	if err != nil {
		return nil, nil, err
	}
	if you, err = e.identifyAll(ctx, m, e.profile.YourLineup); err != nil {
		return nil, nil, err
	}
	if opponent, err = e.identifyAll(ctx, m, e.profile.OpponentLineup); err != nil {
		return nil, nil, err
	}
	return you, opponent, nil
}

func (e *Engine) identifyAll(ctx context.Context, m gocv.Mat, windows [6]Window) ([]recognition.Identity, error) {
	ids := make([]recognition.Identity, 0, len(windows))
	for _, w := range windows {
		crop, err := cropImage(m, w)
		if err != nil {
			return nil, err
		}
		id, err := e.pokemon.Identify(ctx, crop)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ActivePokemon reads both HUD name windows of an in-battle frame
func (e *Engine) ActivePokemon(ctx context.Context, frame video.Frame) (you, opponent recognition.Identity, err error) {
	th := e.profile.Thresholds.NameBinary

	img, _, err := e.binaryCrop(frame, e.profile.YourName, th)
	if err != nil {
		return you, opponent, err
	}
	if you, err = e.names.Read(ctx, img); err != nil {
		return you, opponent, err
	}

	img, _, err = e.binaryCrop(frame, e.profile.OpponentName, th)
	if err != nil {
		return you, opponent, err
	}
	opponent, err = e.names.Read(ctx, img)
	return you, opponent, err
}

// Message reads the text banner of a message frame
func (e *Engine) Message(ctx context.Context, frame video.Frame) (string, bool) {
	img, white, err := e.binaryCrop(frame, e.profile.Message, e.profile.Thresholds.MessageBinary)
	if err != nil {
		return "", false
	}
	return e.messages.Read(ctx, img, white)
}

// Embed computes the embedding of a pokemon crop for the vector index
func (e *Engine) Embed(crop image.Image) ([]float32, error) {
	if e.embedder == nil {
		return nil, ErrNoEmbeddingModel
	}
	return e.embedder.Embed(crop)
}

func (e *Engine) binaryCrop(frame video.Frame, w Window, thresh float64) (image.Image, int, error) {
	m, err := e.frameMat(frame)
	if err != nil {
		return nil, 0, err
	}
	gray := toGray(m)
	defer gray.Close()
	roi := gray.Region(w.Rect())
	defer roi.Close()
	return binarize(roi, thresh)
}

// Ensure Engine implements the classifier ports
var (
	_ detection.Classifier = (*Engine)(nil)
	_ detection.Analyzer   = (*Engine)(nil)
)
