// Package pdftest builds small synthetic PDF documents for tests.
//
// Pages are told apart by their media box width, and images are embedded
// as DCT (JPEG) streams so that extracted image bytes can be compared with
// the bytes that went in.
package pdftest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Image is a JPEG image embedded in a page
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Page describes one page of a synthetic document
type Page struct {
	Width  int
	Height int
	Images []Image
}

const baseWidth = 200

// WidthOf is the media box width Pages assigns to the page at index.
func WidthOf(index int) int {
	return baseWidth + 10*index
}

// Pages returns n image-less pages of distinct widths.
func Pages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Width: WidthOf(i), Height: 300}
	}
	return pages
}

// JPEG encodes a solid w x h image of the given color.
func JPEG(w, h int, c color.RGBA) Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	return Image{Data: buf.Bytes(), Width: w, Height: h}
}

// Build serializes pages into a PDF 1.7 document with a classic xref table.
func Build(pages []Page) []byte {
	// objects[i] holds object number i+1; 1 is the catalog and 2 the page tree
	objects := make([][]byte, 2)
	kids := make([]string, 0, len(pages))

	for _, p := range pages {
		pageNr := len(objects) + 1
		contentNr := pageNr + 1
		objects = append(objects, nil, nil)

		var xobjects, content strings.Builder
		for k, img := range p.Images {
			imgNr := len(objects) + 1
			objects = append(objects, imageObject(img))
			fmt.Fprintf(&xobjects, "/Im%d %d 0 R ", k, imgNr)
			fmt.Fprintf(&content, "q %d 0 0 %d %d %d cm /Im%d Do Q\n", img.Width, img.Height, 10+k*(img.Width+10), 10, k)
		}
		if content.Len() == 0 {
			content.WriteString("q Q\n")
		}

		objects[pageNr-1] = []byte(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /XObject << %s>> >> /Contents %d 0 R >>",
			p.Width, p.Height, xobjects.String(), contentNr))
		objects[contentNr-1] = stream(fmt.Sprintf("/Length %d", content.Len()), []byte(content.String()))
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNr))
	}

	objects[0] = []byte("<< /Type /Catalog /Pages 2 0 R >>")
	objects[1] = []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(obj)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func imageObject(img Image) []byte {
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d",
		img.Width, img.Height, len(img.Data))
	return stream(dict, img.Data)
}

func stream(dict string, data []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s >>\nstream\n", dict)
	buf.Write(data)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}

// PageWidths returns the rounded media box width of every page in data.
func PageWidths(data []byte) ([]int, error) {
	dims, err := api.PageDims(bytes.NewReader(data), nil)
	if err != nil {
		return nil, err
	}
	widths := make([]int, len(dims))
	for i, d := range dims {
		widths[i] = int(math.Round(d.Width))
	}
	return widths, nil
}

// Widths returns the widths Pages assigns to the given page indices.
func Widths(indices ...int) []int {
	widths := make([]int, len(indices))
	for i, index := range indices {
		widths[i] = WidthOf(index)
	}
	return widths
}
