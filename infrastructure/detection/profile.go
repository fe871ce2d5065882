package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrUnknownProfile is returned for a profile name with no coordinate table
var ErrUnknownProfile = errors.New("unknown detection profile")

// Window is a crop rectangle given as row range then column range
type Window struct {
	Y0, Y1, X0, X1 int
}

// Rect converts the window to an image rectangle
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.X0, w.Y0, w.X1, w.Y1)
}

// Scale multiplies every coordinate, rounding to the nearest pixel
func (w Window) Scale(f float64) Window {
	s := func(v int) int { return int(math.Round(float64(v) * f)) }
	return Window{Y0: s(w.Y0), Y1: s(w.Y1), X0: s(w.X0), X1: s(w.X1)}
}

// Thresholds are the pixel and score gates of the classifier and readers
type Thresholds struct {
	// Template is the default match score for screen templates
	Template float64
	// Strict gates win/lose, message and pokemon templates
	Strict float64

	Level50Binary   float64
	Level50MinWhite int

	MessageWindowBinary   float64
	MessageWindowMinWhite int
	MessageWindowMaxWhite int
	MSERMinRegions        int

	MessageBinary float64
	RankBinary    float64
	SelectBinary  float64
	NameBinary    float64
}

// DefaultThresholds are tuned on 720p captures
var DefaultThresholds = Thresholds{
	Template:              0.6,
	Strict:                0.8,
	Level50Binary:         200,
	Level50MinWhite:       100,
	MessageWindowBinary:   230,
	MessageWindowMinWhite: 60,
	MessageWindowMaxWhite: 200,
	MSERMinRegions:        2,
	MessageBinary:         200,
	RankBinary:            160,
	SelectBinary:          200,
	NameBinary:            200,
}

// Profile is the immutable coordinate table of one capture resolution
type Profile struct {
	Name   string
	Width  int
	Height int

	StandingBy         Window
	Level50            Window
	Ranking            Window
	RankingNumber      Window
	FirstRanking       Window
	FirstRankingNumber Window
	WinLost            Window
	SelectDone         Window
	MessageProbe       Window
	Message            Window
	YourName           Window
	OpponentName       Window

	// YourLineup and OpponentLineup are the six pre-battle slots of each side
	YourLineup     [6]Window
	OpponentLineup [6]Window
	// SelectNumbers are the ordinal marker windows next to each lineup slot
	SelectNumbers [6]Window

	Thresholds Thresholds
}

// Size returns the frame size a profile expects
func (p Profile) Size() image.Point {
	return image.Pt(p.Width, p.Height)
}

var (
	lineupRows = [6][2]int{{170, 230}, {230, 295}, {295, 360}, {360, 425}, {425, 485}, {485, 550}}
	selectRows = [6][2]int{{118, 150}, {192, 223}, {263, 295}, {335, 367}, {408, 440}, {480, 512}}
)

func baseProfile() Profile {
	p := Profile{
		Name:               "720p",
		Width:              1280,
		Height:             720,
		StandingBy:         Window{575, 610, 160, 435},
		Level50:            Window{55, 80, 980, 1040},
		Ranking:            Window{250, 350, 450, 750},
		RankingNumber:      Window{390, 450, 580, 750},
		FirstRanking:       Window{60, 110, 860, 1230},
		FirstRankingNumber: Window{60, 110, 1000, 1230},
		WinLost:            Window{600, 700, 250, 500},
		SelectDone:         Window{560, 610, 90, 503},
		MessageProbe:       Window{520, 550, 180, 200},
		Message:            Window{500, 600, 160, 1050},
		YourName:           Window{640, 670, 40, 200},
		OpponentName:       Window{25, 55, 1090, 1250},
		Thresholds:         DefaultThresholds,
	}
	for i, r := range lineupRows {
		p.YourLineup[i] = Window{r[0], r[1], 170, 240}
		p.OpponentLineup[i] = Window{r[0], r[1], 770, 840}
	}
	for i, r := range selectRows {
		p.SelectNumbers[i] = Window{r[0], r[1], 480, 580}
	}
	return p
}

func (p Profile) scaled(name string, f float64) Profile {
	s := p
	s.Name = name
	s.Width = int(math.Round(float64(p.Width) * f))
	s.Height = int(math.Round(float64(p.Height) * f))
	for _, w := range []*Window{
		&s.StandingBy, &s.Level50, &s.Ranking, &s.RankingNumber, &s.FirstRanking,
		&s.FirstRankingNumber, &s.WinLost, &s.SelectDone, &s.MessageProbe, &s.Message,
		&s.YourName, &s.OpponentName,
	} {
		*w = w.Scale(f)
	}
	for i := range s.YourLineup {
		s.YourLineup[i] = s.YourLineup[i].Scale(f)
		s.OpponentLineup[i] = s.OpponentLineup[i].Scale(f)
		s.SelectNumbers[i] = s.SelectNumbers[i].Scale(f)
	}
	// pixel counts grow with area
	area := f * f
	s.Thresholds.Level50MinWhite = int(math.Round(float64(p.Thresholds.Level50MinWhite) * area))
	s.Thresholds.MessageWindowMinWhite = int(math.Round(float64(p.Thresholds.MessageWindowMinWhite) * area))
	s.Thresholds.MessageWindowMaxWhite = int(math.Round(float64(p.Thresholds.MessageWindowMaxWhite) * area))
	return s
}

// Scale returns the factor between this profile and the 720p table
func (p Profile) Scale() float64 {
	return float64(p.Width) / 1280
}

// ProfileNames lists the shipped profiles
var ProfileNames = []string{"720p", "1080p", "2160p"}

// ProfileFor returns the coordinate table for a profile name
func ProfileFor(name string) (Profile, error) {
	base := baseProfile()
	switch name {
	case "720p", "":
		return base, nil
	case "1080p":
		return base.scaled("1080p", 1.5), nil
	case "2160p":
		return base.scaled("2160p", 3), nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// WithScores returns the profile with its template gates replaced; zero
// values keep the defaults
func (p Profile) WithScores(template, strict float64) Profile {
	if template > 0 {
		p.Thresholds.Template = template
	}
	if strict > 0 {
		p.Thresholds.Strict = strict
	}
	return p
}

// CheckSize rejects frames captured at another resolution
func (p Profile) CheckSize(width, height int) error {
	if width != p.Width || height != p.Height {
		return fmt.Errorf("frame is %dx%d, profile %s expects %dx%d", width, height, p.Name, p.Width, p.Height)
	}
	return nil
}
