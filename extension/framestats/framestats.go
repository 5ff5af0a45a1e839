// Package framestats logs main loop timing. Every Window frames it reports
// the mean, min and max time spent inside the host main loop and how many
// presents the graphics layer issued.
package framestats

import (
	"time"

	"go.uber.org/zap"

	"github.com/k2io/hostpatch/extension"
	"github.com/k2io/hostpatch/intercept"
)

const Name = "framestats"

// DefaultWindow is the number of frames per report.
const DefaultWindow = 600

func init() {
	extension.Register(Name, func() extension.Extension { return New(DefaultWindow) })
}

type Stats struct {
	Window int

	log      *zap.SugaredLogger
	now      func() time.Time
	start    time.Time
	frames   int
	presents int
	total    time.Duration
	min      time.Duration
	max      time.Duration
}

func New(window int) *Stats {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Stats{Window: window, now: time.Now}
}

func (s *Stats) Describe() extension.Info {
	return extension.Info{
		Name:        Name,
		Version:     "1.0",
		Description: "main loop frame time statistics",
		Author:      "hostpatch",
	}
}

func (s *Stats) Init(e *intercept.Engine) error {
	s.attach(&e.MainLoop, &e.Present, e.Log().Named(Name))
	return nil
}

func (s *Stats) attach(loop, present *intercept.Hooks[func()], log *zap.SugaredLogger) {
	s.log = log
	loop.Pre.Register(s.begin)
	loop.Post.Register(s.end)
	present.Post.Register(func() { s.presents++ })
}

func (s *Stats) begin() {
	s.start = s.now()
}

func (s *Stats) end() {
	if s.start.IsZero() {
		return
	}
	d := s.now().Sub(s.start)
	s.start = time.Time{}
	if s.frames == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.total += d
	s.frames++
	if s.frames >= s.Window {
		s.report()
	}
}

func (s *Stats) report() {
	s.log.Infow("frame stats",
		"frames", s.frames,
		"presents", s.presents,
		"mean", s.total/time.Duration(s.frames),
		"min", s.min,
		"max", s.max,
	)
	s.frames, s.presents = 0, 0
	s.total, s.min, s.max = 0, 0, 0
}
