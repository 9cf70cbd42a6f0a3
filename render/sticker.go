package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"repairbot/model"
)

// Sticker geometry, millimetres unless noted.
const (
	stickerWidth  = 40.0
	stickerHeight = 30.0
	stickerDPI    = 300

	stickerFont        = 2.2
	stickerTextMargin  = 2.3
	stickerLineSpacing = 4.5
	stickerQRSize      = 16.0
	stickerQRMargin    = 2.0

	stickerNameLen    = 14
	stickerProblemLen = 20
)

func px(mm float64) int {
	return int(mm * stickerDPI / 25.4)
}

// StickerName is the file name a sticker is archived under.
func StickerName(id int) string {
	return fmt.Sprintf("стикер (%d).pdf", id)
}

// StickerLines is the text printed on the sticker of req.
func (p *PDF) StickerLines(req *model.Request) []string {
	problem := []rune(req.Problem)
	problemLine := req.Problem
	if len(problem) > stickerProblemLen {
		problemLine = string(problem[:stickerProblemLen]) + "..."
	}

	name := []rune(req.Name)
	if len(name) > stickerNameLen {
		name = name[:stickerNameLen]
	}

	return []string{
		fmt.Sprintf("ID: %d", req.ID),
		fmt.Sprintf("Дата: %s", p.now().Format("02-01")),
		fmt.Sprintf("Клиент: %s", string(name)),
		fmt.Sprintf("Тел: %s", req.Phone),
		fmt.Sprintf("Пробл: %s", problemLine),
	}
}

// Sticker renders a 40x30 mm label with the request summary and a QR code
// pointing at url.
func (p *PDF) Sticker(req *model.Request, url string) ([]byte, error) {
	img, err := p.stickerImage(req, url)
	if err != nil {
		return nil, err
	}

	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return nil, errors.Wrap(err, "cannot encode sticker image")
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: stickerWidth, Ht: stickerHeight},
	})
	pdf.SetCreationDate(p.now())
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sticker", opts, &raster)
	pdf.ImageOptions("sticker", 0, 0, stickerWidth, stickerHeight, false, opts, 0, "")

	return output(pdf)
}

func (p *PDF) stickerImage(req *model.Request, url string) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, px(stickerWidth), px(stickerHeight)))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	face, err := p.face(float64(px(stickerFont)))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create font face")
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	x := px(stickerTextMargin)
	y := px(stickerTextMargin) + face.Metrics().Ascent.Ceil()
	for _, line := range p.StickerLines(req) {
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
		y += px(stickerLineSpacing)
	}

	qr, err := qrcode.New(url, qrcode.Highest)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode qr code")
	}
	qr.DisableBorder = true

	size := px(stickerQRSize)
	margin := px(stickerQRMargin)
	code := qr.Image(size)
	dst := image.Rect(img.Bounds().Dx()-size-margin, margin, img.Bounds().Dx()-margin, margin+size)
	xdraw.NearestNeighbor.Scale(img, dst, code, code.Bounds(), draw.Src, nil)

	return img, nil
}
