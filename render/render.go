// Package render produces the printable artifacts of a request: the receipt
// handed to the client and the sticker glued to the device.
package render

import (
	"bytes"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"repairbot/model"
)

type Renderer interface {
	Receipt(req *model.Request) ([]byte, error)
	Sticker(req *model.Request, url string) ([]byte, error)
}

// PDF renders with a TrueType font when one is configured. Without it the
// core Helvetica font is used, which cannot show Cyrillic text.
type PDF struct {
	font   []byte
	parsed *opentype.Font
	now    func() time.Time
}

func NewPDF(fontPath string, logger logrus.FieldLogger) (*PDF, error) {
	p := &PDF{now: time.Now}
	if fontPath == "" {
		logger.Warn("no font configured, using default")
		return p, nil
	}

	b, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read font")
	}

	parsed, err := opentype.Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse font")
	}

	p.font = b
	p.parsed = parsed

	return p, nil
}

const fontFamily = "receipt"

func (p *PDF) setFont(pdf *fpdf.Fpdf, size float64) {
	if p.font != nil {
		pdf.AddUTF8FontFromBytes(fontFamily, "", p.font)
		pdf.SetFont(fontFamily, "", size)
		return
	}
	pdf.SetFont("Helvetica", "", size)
}

// face returns a raster face sized in pixels.
func (p *PDF) face(px float64) (font.Face, error) {
	if p.parsed == nil {
		return basicfont.Face7x13, nil
	}

	return opentype.NewFace(p.parsed, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "cannot write pdf")
	}
	return buf.Bytes(), nil
}
