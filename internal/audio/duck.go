package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxVolume = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type streamInfo struct {
	ID      int
	Volume  int
	AppName string
}

type fadeTarget struct {
	id   int
	from int
	to   int
}

// Ducker fades other PulseAudio streams down while Jarvis listens and back
// up afterwards. Streams whose application.name is in selfNames are left alone.
type Ducker struct {
	Factor   float64       // ducked volume = current * Factor
	Duration time.Duration // fade length

	mu          sync.Mutex
	active      bool
	selfNames   []string
	originalVol map[int]int // sink-input id -> volume before ducking
	minVolume   int

	pactl func(ctx context.Context, args ...string) ([]byte, error)
	sleep func(time.Duration)
}

func NewDucker(selfNames []string, minVolume int) *Ducker {
	return &Ducker{
		Factor:      0.3,
		Duration:    200 * time.Millisecond,
		selfNames:   slices.Clone(selfNames),
		originalVol: make(map[int]int),
		minVolume:   clampVolume(minVolume),
		pactl:       runPactl,
		sleep:       time.Sleep,
	}
}

func (d *Ducker) Duck(ctx context.Context) error {
	return d.DuckOthers(ctx, d.Factor, d.Duration)
}

func (d *Ducker) Unduck(ctx context.Context) error {
	return d.UnduckOthers(ctx, d.Duration)
}

// DuckOthers fades every foreign stream to current*factor, never below
// minVolume. A second call before UnduckOthers is a no-op.
func (d *Ducker) DuckOthers(ctx context.Context, factor float64, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := d.listStreams(ctx)
	if err != nil {
		return err
	}

	d.originalVol = make(map[int]int)
	var targets []fadeTarget
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}
		to := math.Max(float64(s.Volume)*factor, float64(d.minVolume))
		d.originalVol[s.ID] = s.Volume
		targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: clampVolume(int(math.Round(to)))})
	}

	if err := d.fade(ctx, targets, duration); err != nil {
		return err
	}
	d.active = true
	return nil
}

// UnduckOthers restores the streams ducked earlier. Streams that appeared in
// between are not touched.
func (d *Ducker) UnduckOthers(ctx context.Context, duration time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := d.listStreams(ctx)
	if err != nil {
		return err
	}

	var targets []fadeTarget
	for _, s := range streams {
		if d.isSelf(s) {
			continue
		}
		if orig, ok := d.originalVol[s.ID]; ok {
			targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: orig})
		}
	}

	if err := d.fade(ctx, targets, duration); err != nil {
		return err
	}
	d.originalVol = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelf(s streamInfo) bool {
	return slices.Contains(d.selfNames, s.AppName)
}

func (d *Ducker) fade(ctx context.Context, targets []fadeTarget, duration time.Duration) error {
	if len(targets) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond
	steps := max(int(duration/minStep), 1)
	if duration <= 0 {
		steps = 0
	}

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := 1.0
		if steps > 0 {
			frac = float64(i) / float64(steps)
		}
		for _, t := range targets {
			v := int(math.Round(float64(t.from) + float64(t.to-t.from)*frac))
			if err := d.setVolume(ctx, t.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", t.id, err)
			}
		}

		if i < steps {
			d.sleep(duration / time.Duration(steps))
		}
	}
	return nil
}

func (d *Ducker) listStreams(ctx context.Context) ([]streamInfo, error) {
	out, err := d.pactl(ctx, "list", "sink-inputs")
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return parseSinkInputs(string(out)), nil
}

func (d *Ducker) setVolume(ctx context.Context, id, percent int) error {
	_, err := d.pactl(ctx, "set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", clampVolume(percent)))
	return err
}

// parseSinkInputs reads the output of `pactl list sink-inputs`.
func parseSinkInputs(text string) []streamInfo {
	parts := strings.Split(text, "Sink Input #")
	var res []streamInfo

	for _, block := range parts[1:] {
		idLine, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(idLine))
		if err != nil {
			continue
		}

		s := streamInfo{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); m != nil {
					s.Volume, _ = strconv.Atoi(m[1])
				}
			}

			// application.name = "Firefox"
			if rest, ok := strings.CutPrefix(line, "application.name = "); ok && s.AppName == "" {
				s.AppName = strings.Trim(rest, `"`)
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}
		res = append(res, s)
	}
	return res
}

func runPactl(ctx context.Context, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, "pactl", args...).Output()
}

func clampVolume(v int) int {
	return min(max(v, 0), maxVolume)
}
