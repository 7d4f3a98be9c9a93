package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/Fepozopo/grainer/pkg/grain"
	"github.com/Fepozopo/grainer/pkg/stdimg"
)

// Character cell size assumed when mapping pixels to terminal cells.
const (
	cellW    = 8
	cellH    = 16
	maxCols  = 80
	maxRows  = 40
	minCols  = 6
	minRows  = 3
	kittyMax = 4096
)

// Previewer draws images inline in terminals that speak the kitty graphics
// protocol or the iTerm2 OSC 1337 protocol.
type Previewer struct {
	w      io.Writer
	getenv func(string) string
}

// NewPreviewer returns a Previewer writing escape sequences to w and reading
// terminal hints through getenv.
func NewPreviewer(w io.Writer, getenv func(string) string) *Previewer {
	return &Previewer{w: w, getenv: getenv}
}

func (p *Previewer) isKitty() bool {
	if p.getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func (p *Previewer) isInline() bool {
	switch p.getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "Tabby":
		return true
	}
	return p.getenv("ITERM_SESSION_ID") != ""
}

// backend returns "kitty", "inline" or "" when no protocol is available.
// PREVIEW_BACKEND forces a choice.
func (p *Previewer) backend() string {
	switch v := strings.ToLower(p.getenv("PREVIEW_BACKEND")); v {
	case "kitty":
		return "kitty"
	case "inline", "iterm", "wezterm":
		return "inline"
	}
	if p.isKitty() {
		return "kitty"
	}
	if p.isInline() {
		return "inline"
	}
	return ""
}

// Preview shows buf scaled down to fit the terminal.
func (p *Previewer) Preview(buf *grain.PixelBuffer) error {
	backend := p.backend()
	if backend == "" {
		return fmt.Errorf("terminal does not support inline images")
	}
	img, err := stdimg.ToImage(buf)
	if err != nil {
		return err
	}
	cols, rows := previewCells(buf.Cols, buf.Rows)
	thumb := thumbnail(img, cols*cellW, rows*cellH)

	var enc bytes.Buffer
	if err := png.Encode(&enc, thumb); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	if backend == "kitty" {
		return p.sendKitty(enc.Bytes(), cols, rows)
	}
	return p.sendInline(enc.Bytes(), thumb.Bounds().Dx(), thumb.Bounds().Dy())
}

// previewCells maps an image size to terminal cells, preserving aspect ratio
// and never scaling up.
func previewCells(w, h int) (cols, rows int) {
	scale := min(1.0, float64(maxCols*cellW)/float64(w), float64(maxRows*cellH)/float64(h))
	cols = clampInt(int(float64(w)*scale/cellW+0.5), minCols, maxCols)
	rows = clampInt(int(float64(h)*scale/cellH+0.5), minRows, maxRows)
	return cols, rows
}

// thumbnail scales img to fit within maxW x maxH.
func thumbnail(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	scale := min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (p *Previewer) sendKitty(data []byte, cols, rows int) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for pos := 0; pos < len(enc); pos += kittyMax {
		end := min(pos+kittyMax, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			// a=T transmit+display, f=100 png, q=2 quiet, c/r placement
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", cols, rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.w, seq); err != nil {
			return err
		}
	}
	_, err := io.WriteString(p.w, "\n")
	return err
}

func (p *Previewer) sendInline(data []byte, w, h int) error {
	seq := fmt.Sprintf("\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n",
		len(data), w, h, base64.StdEncoding.EncodeToString(data))
	_, err := io.WriteString(p.w, seq)
	return err
}

// clampInt clamps v to [lo,hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
