// Package pdftest builds small, valid PDF documents for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// Build returns a PDF with one page per argument, each showing the given text
// in Helvetica. Content streams are stored uncompressed.
func Build(pages ...string) []byte {
	return build(false, literal, pages)
}

// BuildCompressed is like Build but Flate-encodes every content stream.
func BuildCompressed(pages ...string) []byte {
	return build(true, literal, pages)
}

// BuildWide is like Build but shows each page as a hex string of two-byte
// big-endian codes, the way CID-keyed fonts encode text. Readers that decode
// it one byte per glyph produce a NUL before every character.
func BuildWide(pages ...string) []byte {
	return build(false, wideHex, pages)
}

// Truncated returns a document whose cross-reference section is cut off, which
// page-tree readers reject while the content streams stay intact.
func Truncated(pages ...string) []byte {
	doc := Build(pages...)
	if i := bytes.Index(doc, []byte("\nxref\n")); i > 0 {
		return doc[:i+1]
	}
	return doc
}

func build(compress bool, show func(string) string, pages []string) []byte {
	objects := 3 + 2*len(pages)
	offsets := make([]int, objects+1)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		pageNum := 4 + 2*i
		contentNum := pageNum + 1
		writeObj(pageNum, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentNum))

		stream := []byte(fmt.Sprintf("BT /F1 12 Tf 72 720 Td %s Tj ET", show(text)))
		filter := ""
		if compress {
			var z bytes.Buffer
			zw := zlib.NewWriter(&z)
			_, _ = zw.Write(stream)
			_ = zw.Close()
			stream = z.Bytes()
			filter = " /Filter /FlateDecode"
		}
		offsets[contentNum] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d%s >>\nstream\n", contentNum, len(stream), filter)
		buf.Write(stream)
		buf.WriteString("\nendstream\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objects+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= objects; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objects+1, xref)
	return buf.Bytes()
}

func literal(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

func wideHex(s string) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, r := range s {
		fmt.Fprintf(&b, "%04X", r&0xFFFF)
	}
	b.WriteByte('>')
	return b.String()
}
